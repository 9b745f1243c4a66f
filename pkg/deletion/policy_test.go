package deletion

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		kind       EntityKind
		dependents int64
		want       Decision
	}{
		{name: "product without orders", kind: EntityProduct, dependents: 0, want: DecisionHardDelete},
		{name: "product with order lines", kind: EntityProduct, dependents: 3, want: DecisionDeactivate},
		{name: "category with products", kind: EntityCategory, dependents: 1, want: DecisionDeactivate},
		{name: "party with orders", kind: EntityParty, dependents: 5, want: DecisionDeactivate},
		{name: "debt with payments", kind: EntityDebt, dependents: 2, want: DecisionReject},
		{name: "debt without payments", kind: EntityDebt, dependents: 0, want: DecisionHardDelete},
		{name: "unknown kind with dependents", kind: EntityKind("widget"), dependents: 1, want: DecisionReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.kind, tt.dependents); got != tt.want {
				t.Fatalf("Decide(%s, %d) = %s, want %s", tt.kind, tt.dependents, got, tt.want)
			}
		})
	}
}
