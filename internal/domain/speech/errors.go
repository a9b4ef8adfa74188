package speech

import "errors"

var ErrUnknownPreset = errors.New("unknown mute preset")
