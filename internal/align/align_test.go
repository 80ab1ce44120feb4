package align

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/kart-engine/internal/geom"
)

const frameDt = 1.0 / 60

func tilt(deg float64) mgl64.Vec3 {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), geom.LocalForward).Rotate(geom.WorldUp)
}

func upAngle(rot mgl64.Quat, normal mgl64.Vec3) float64 {
	up := rot.Rotate(geom.LocalUp)
	return mgl64.RadToDeg(math.Acos(mgl64.Clamp(up.Dot(normal.Normalize()), -1, 1)))
}

func TestToward_AlignedIsNoop(t *testing.T) {
	rot := geom.YawRotation(35)
	got := Toward(rot, geom.WorldUp, DefaultRate, frameDt)
	assert.True(t, got.ApproxEqualThreshold(rot, 1e-9), "got %v want %v", got, rot)
}

func TestToward_ZeroInputs(t *testing.T) {
	rot := mgl64.QuatIdent()
	assert.Equal(t, rot, Toward(rot, mgl64.Vec3{}, DefaultRate, frameDt))
	assert.Equal(t, rot, Toward(rot, tilt(20), 0, frameDt))
	assert.Equal(t, rot, Toward(rot, tilt(20), DefaultRate, 0))
}

func TestToward_ConvergesMonotonically(t *testing.T) {
	normal := tilt(20)
	rot := mgl64.QuatIdent()
	prev := upAngle(rot, normal)
	for i := 0; i < 120; i++ {
		rot = Toward(rot, normal, DefaultRate, frameDt)
		a := upAngle(rot, normal)
		require.LessOrEqual(t, a, prev+1e-9, "step %d", i)
		prev = a
	}
	assert.Less(t, prev, 0.01, "two seconds at 7.5/s closes the gap")
}

func TestToward_FrameRateIndependent(t *testing.T) {
	normal := tilt(15)
	coarse := Toward(mgl64.QuatIdent(), normal, DefaultRate, 1.0/30)
	fine := mgl64.QuatIdent()
	for i := 0; i < 2; i++ {
		fine = Toward(fine, normal, DefaultRate, 1.0/60)
	}
	assert.InDelta(t, upAngle(coarse, normal), upAngle(fine, normal), 1e-6)
}

func TestToward_KeepsHeading(t *testing.T) {
	rot := Toward(geom.YawRotation(60), tilt(10), DefaultRate, frameDt)
	assert.InDelta(t, 60, geom.Yaw(rot), 1.0)
}

func TestApply(t *testing.T) {
	rot := mgl64.QuatIdent()
	assert.Equal(t, rot, DefaultConfig().Apply(rot, nil, frameDt), "no contact, no correction")

	normals := []mgl64.Vec3{tilt(10), tilt(-10)}
	avg := Config{Rate: DefaultRate, Mode: Average}.Apply(rot, normals, frameDt)
	assert.InDelta(t, 0, upAngle(avg, geom.WorldUp), 1e-6, "opposite tilts cancel")

	per := DefaultConfig().Apply(rot, normals, frameDt)
	assert.Greater(t, upAngle(per, geom.WorldUp), 0.0, "per-corner composition leaves a residue")
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, Config{}.Validate())
	assert.ErrorIs(t, Config{Rate: -1}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Rate: 1, Mode: "spin"}.Validate(), ErrInvalidConfig)
}
