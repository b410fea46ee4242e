package models

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid wraps every validation failure coming out of this package.
var ErrInvalid = errors.New("invalid input")

var validate = validator.New()

// Validate checks struct tags on patches and specs at the edit boundary.
// The store itself never validates.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ClampToRoom keeps a dragged item half a meter inside the walls and on the floor.
func ClampToRoom(p Vec3, room RoomConfig) Vec3 {
	return Vec3{
		X: math.Max(0.5, math.Min(room.Width-0.5, p.X)),
		Y: 0,
		Z: math.Max(0.5, math.Min(room.Length-0.5, p.Z)),
	}
}

// Footprint is the scaled floor area an item covers, width by depth.
func (i FurnitureItem) Footprint() (float64, float64) {
	return i.Size.Width * i.Scale.X, i.Size.Depth * i.Scale.Z
}

// DegToRad converts the degree values editors show into stored radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
