package vehicle

// ID is the identifier the host runtime assigns to a vehicle.
type ID uint16

// InvalidID is the host's "no vehicle" value. It is never assigned to a registered vehicle
// and stands for "no trailer" in trailer reports.
const InvalidID ID = 0xFFFF

// Host is the host runtime collaborator that owns the backing game objects.
type Host interface {
	// CreateVehicle asks the host to create a vehicle for the (defaulted) descriptor.
	CreateVehicle(d Descriptor) (ID, error)

	// DestroyVehicle is a best-effort destruction request.
	DestroyVehicle(id ID)
}
