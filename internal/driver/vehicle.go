package driver

import (
	"encoding/json"
	"fmt"

	"github.com/cxd309/kart-engine/internal/kart"
	"github.com/cxd309/kart-engine/internal/kinematics"
)

// DefaultMass is the kart mass used when a vehicle leaves it unset, kg.
const DefaultMass = 100.0

// Vehicle holds the static parameters of a kart type.
// The drive response is encapsulated by Kart.Drive.Model; adding a new model only
// requires implementing kinematics.MotionModel and registering it in UnmarshalJSON below.
type Vehicle struct {
	Name string      `json:"name"`
	Mass float64     `json:"mass"` // kg; 0 = DefaultMass
	Kart kart.Config `json:"-"`    // set by UnmarshalJSON

	// ColliderRadius is the chassis collision sphere, m. Zero places it at the
	// fully compressed ride height: minimum spring length plus wheel radius.
	ColliderRadius float64 `json:"collider_radius,omitempty"`
}

// DefaultVehicle returns the stock kart.
func DefaultVehicle() Vehicle {
	return Vehicle{Name: "kart", Mass: DefaultMass, Kart: kart.DefaultConfig()}
}

// modelDisc is the minimum JSON structure needed to read the model discriminator.
type modelDisc struct {
	Model string `json:"model"`
}

// vehicleJSON is the raw JSON shape of a Vehicle, before the drive model is resolved.
type vehicleJSON struct {
	Name           string          `json:"name"`
	Mass           float64         `json:"mass"`
	ColliderRadius float64         `json:"collider_radius"`
	Suspension     json.RawMessage `json:"suspension"`
	Align          json.RawMessage `json:"align"`
	Drive          json.RawMessage `json:"drive"`
	Drift          json.RawMessage `json:"drift"`
}

// UnmarshalJSON implements json.Unmarshaler for Vehicle.
// Every tuning section is optional and is laid over the stock kart, field by field.
// The "drive" object may carry a "model" discriminator key that selects the concrete
// implementation; the rest of the drive object is forwarded to that implementation.
//
// Supported models:
//   - "exponential" (default): first-order lag per throttle branch.
//   - "constant": fixed a_acc / a_dcc rates.
func (v *Vehicle) UnmarshalJSON(data []byte) error {
	var aux vehicleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v.Name = aux.Name
	v.Mass = aux.Mass
	v.ColliderRadius = aux.ColliderRadius
	v.Kart = kart.DefaultConfig()

	sections := []struct {
		name string
		raw  json.RawMessage
		dst  any
	}{
		{"suspension", aux.Suspension, &v.Kart.Suspension},
		{"align", aux.Align, &v.Kart.Align},
		{"drive", aux.Drive, &v.Kart.Drive},
		{"drift", aux.Drift, &v.Kart.Drift},
	}
	for _, s := range sections {
		if len(s.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(s.raw, s.dst); err != nil {
			return fmt.Errorf("vehicle %q: parsing %s: %w", v.Name, s.name, err)
		}
	}
	if len(aux.Drive) == 0 {
		return nil
	}

	var disc modelDisc
	if err := json.Unmarshal(aux.Drive, &disc); err != nil {
		return fmt.Errorf("vehicle %q: reading drive model discriminator: %w", v.Name, err)
	}

	switch disc.Model {
	case kinematics.ExponentialModelName, "":
		m := kinematics.NewExponential(kart.DefaultMaxSpeed)
		if err := json.Unmarshal(aux.Drive, &m); err != nil {
			return fmt.Errorf("vehicle %q: parsing exponential drive: %w", v.Name, err)
		}
		v.Kart.Drive.Model = m
	case kinematics.ConstantModelName:
		var m kinematics.ConstantAcceleration
		if err := json.Unmarshal(aux.Drive, &m); err != nil {
			return fmt.Errorf("vehicle %q: parsing constant drive: %w", v.Name, err)
		}
		v.Kart.Drive.Model = m
	default:
		return fmt.Errorf("vehicle %q: unknown drive model %q", v.Name, disc.Model)
	}
	return nil
}
