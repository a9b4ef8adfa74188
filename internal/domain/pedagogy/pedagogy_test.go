package pedagogy_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pitwall/internal/domain/pedagogy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Given the built-in knowledge base", t, func() {
		base := pedagogy.Default()

		Convey("Then it has five entries per level", func() {
			levels := map[string]int{}
			for _, e := range base.Entries() {
				levels[e.Level]++
			}
			So(base.Len(), ShouldEqual, 10)
			So(levels[pedagogy.LevelNovice], ShouldEqual, 5)
			So(levels[pedagogy.LevelIntermediate], ShouldEqual, 5)
		})

		Convey("Then the JSON document round-trips with snake_case keys", func() {
			var decoded []map[string]string
			So(json.Unmarshal([]byte(base.JSON()), &decoded), ShouldBeNil)
			So(decoded[0]["id"], ShouldEqual, "NOV_01")
			So(decoded[5]["virtual_trigger"], ShouldEqual, "braking_slope_lazy")
		})

		Convey("Then Entries returns a copy", func() {
			base.Entries()[0].Advice = "changed"
			So(base.Entries()[0].Advice, ShouldStartWith, "Use all the track")
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given invalid entry sets", t, func() {
		_, err := pedagogy.New(nil)
		So(errors.Is(err, pedagogy.ErrEmpty), ShouldBeTrue)

		_, err = pedagogy.New([]pedagogy.Entry{{ID: "X", Level: "Expert", Advice: "a"}})
		So(errors.Is(err, pedagogy.ErrInvalidEntry), ShouldBeTrue)

		_, err = pedagogy.New([]pedagogy.Entry{
			{ID: "X", Level: pedagogy.LevelNovice, Advice: "a"},
			{ID: "X", Level: pedagogy.LevelNovice, Advice: "b"},
		})
		So(errors.Is(err, pedagogy.ErrInvalidEntry), ShouldBeTrue)
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a YAML knowledge base file", t, func() {
		path := filepath.Join(t.TempDir(), "pedagogy.yaml")
		content := `
entries:
  - id: OVAL_01
    level: Novice
    concept: Banking
    symptom: Lifting mid-corner
    virtual_trigger: throttle_lift_mid_corner
    advice: Stay flat. The banking holds the car.
`
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When it is loaded", func() {
			base, err := pedagogy.LoadFile(path)

			Convey("Then the entries replace the defaults", func() {
				So(err, ShouldBeNil)
				So(base.Len(), ShouldEqual, 1)
				So(base.Entries()[0].VirtualTrigger, ShouldEqual, "throttle_lift_mid_corner")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := pedagogy.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
