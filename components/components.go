// Package components defines ECS components for the simulation.
package components

// WealthClass buckets an agent by wealth relative to the richest agent
// in the population.
type WealthClass uint8

const (
	ClassPoor WealthClass = iota
	ClassMiddle
	ClassRich
)

// String returns the display name for a WealthClass.
func (c WealthClass) String() string {
	names := WealthClassNames()
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown"
}

// WealthClassNames returns the display names for all wealth classes.
// The order matches the WealthClass constants.
func WealthClassNames() []string {
	return []string{"poor", "middle_class", "rich"}
}

// Identity carries the stable agent id. Rebirth reuses the entity and
// keeps the id; everything else is redrawn.
type Identity struct {
	ID int
}

// Position is an agent's patch coordinate.
type Position struct {
	X, Y int
}

// Traits holds the attributes rolled for one life.
type Traits struct {
	Metabolism     int // grain consumed per tick
	Vision         int // foraging distance in patches
	LifeExpectancy int // max age in ticks
}

// Wealth holds accumulated grain and the class derived from it at end of tick.
type Wealth struct {
	Amount float64
	Class  WealthClass
}

// Age counts ticks survived in the current life.
type Age struct {
	Ticks int
}
