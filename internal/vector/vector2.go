// Package vector implements the 2D vector type used throughout the
// geometry kernel, the navmesh builder and the ship simulation.
package vector

import (
	"encoding/json"
	"math"
	"math/rand"
	"strconv"

	"github.com/bytearena/botnav/internal/number"
)

// Vector2 is an immutable 2D point/vector; every operation returns a new
// value rather than mutating the receiver.
type Vector2 struct {
	x float64
	y float64
}

func MakeVector2(x float64, y float64) Vector2 {
	return Vector2{x, y}
}

// MakeRandomVector2 returns a random unit vector.
func MakeRandomVector2() Vector2 {
	radians := rand.Float64() * math.Pi * 2
	return MakeVector2(math.Cos(radians), math.Sin(radians))
}

func MakeNullVector2() Vector2 {
	return MakeVector2(0, 0)
}

func (v Vector2) Get() (float64, float64) { return v.x, v.y }
func (v Vector2) GetX() float64           { return v.x }
func (v Vector2) GetY() float64           { return v.y }

var floatformat = byte('f')

func (v Vector2) MarshalJSON() ([]byte, error) {
	b := []byte{'['}
	b = strconv.AppendFloat(b, v.x, floatformat, 4, 64)
	b = append(b, byte(','))
	b = strconv.AppendFloat(b, v.y, floatformat, 4, 64)
	return append(b, byte(']')), nil
}

func (a *Vector2) UnmarshalJSON(b []byte) error {
	var floats [2]float64
	if err := json.Unmarshal(b, &floats); err != nil {
		return err
	}
	a.x, a.y = floats[0], floats[1]
	return nil
}

func (a Vector2) Clone() Vector2 { return Vector2{a.x, a.y} }

func (a Vector2) Add(b Vector2) Vector2 {
	a.x += b.x
	a.y += b.y
	return a
}

func (a Vector2) AddScalar(f float64) Vector2 {
	a.x += f
	a.y += f
	return a
}

func (a Vector2) Sub(b Vector2) Vector2 {
	a.x -= b.x
	a.y -= b.y
	return a
}

func (a Vector2) Scale(scale float64) Vector2 {
	a.x *= scale
	a.y *= scale
	return a
}

func (a Vector2) Mult(b Vector2) Vector2 {
	a.x *= b.x
	a.y *= b.y
	return a
}

func (a Vector2) MultScalar(f float64) Vector2 {
	a.x *= f
	a.y *= f
	return a
}

func (a Vector2) DivScalar(f float64) Vector2 {
	a.x /= f
	a.y /= f
	return a
}

func (a Vector2) Mag() float64   { return math.Sqrt(a.MagSq()) }
func (a Vector2) MagSq() float64 { return a.x*a.x + a.y*a.y }

func (a Vector2) Normalize() Vector2 {
	mag := a.Mag()
	if mag > 0 {
		return a.DivScalar(mag)
	}
	return a
}

func (a Vector2) SetMag(mag float64) Vector2 {
	return a.Normalize().MultScalar(mag)
}

// OrthogonalClockwise returns a vector rotated -90deg from a.
func (a Vector2) OrthogonalClockwise() Vector2 {
	return MakeVector2(a.y, -a.x)
}

// OrthogonalCounterClockwise returns a vector rotated +90deg from a.
func (a Vector2) OrthogonalCounterClockwise() Vector2 {
	return MakeVector2(-a.y, a.x)
}

func (a Vector2) Center() Vector2 { return a.MultScalar(0.5) }

func (a Vector2) Distance(b Vector2) float64 {
	return a.Sub(b).Mag()
}

func (a Vector2) DistanceSq(b Vector2) float64 {
	return a.Sub(b).MagSq()
}

func (a Vector2) SetAngle(radians float64) Vector2 {
	mag := a.Mag()
	a.x = math.Cos(radians) * mag
	a.y = math.Sin(radians) * mag
	return a
}

func (a Vector2) Limit(max float64) Vector2 {
	if a.MagSq() > max*max {
		return a.Normalize().MultScalar(max)
	}
	return a
}

// Angle returns the angle of the vector in the conventional atan2(y,x) sense.
func (a Vector2) Angle() float64 {
	if a.x == 0 && a.y == 0 {
		return 0
	}
	return math.Atan2(a.y, a.x)
}

func (a Vector2) Cross(v Vector2) float64 { return a.x*v.y - a.y*v.x }
func (a Vector2) Dot(v Vector2) float64   { return a.x*v.x + a.y*v.y }

func (a Vector2) IsNull() bool { return number.IsZero(a.x) && number.IsZero(a.y) }

func (a Vector2) Equals(b Vector2) bool { return b.Sub(a).IsNull() }

func (a Vector2) String() string {
	return "<Vector2(" + number.FloatToStr(a.x, 5) + ", " + number.FloatToStr(a.y, 5) + ")>"
}

func (a Vector2) ToFloatArray() [2]float64 { return [2]float64{a.x, a.y} }
