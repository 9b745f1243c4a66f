package deletion

// Decision is the outcome of the shared deletion policy.
type Decision string

const (
	// DecisionHardDelete removes the row outright.
	DecisionHardDelete Decision = "hard_delete"
	// DecisionDeactivate flips the entity's active/status flag instead of
	// deleting, preserving history the dependents still reference.
	DecisionDeactivate Decision = "deactivate"
	// DecisionReject refuses the delete entirely.
	DecisionReject Decision = "reject"
)

// EntityKind enumerates the entities subject to the policy.
type EntityKind string

const (
	EntityProduct  EntityKind = "product"
	EntityCategory EntityKind = "category"
	EntityParty    EntityKind = "party"
	EntityDebt     EntityKind = "debt"
	EntityUser     EntityKind = "user"
)

// Decide returns the deletion decision for an entity given how many dependent
// rows reference it. Entities without dependents are hard-deleted. Entities
// with history are deactivated, except debts with recorded payments, whose
// ledger must stay intact.
func Decide(kind EntityKind, dependents int64) Decision {
	if dependents <= 0 {
		return DecisionHardDelete
	}
	switch kind {
	case EntityDebt:
		return DecisionReject
	case EntityProduct, EntityCategory, EntityParty, EntityUser:
		return DecisionDeactivate
	}
	return DecisionReject
}
