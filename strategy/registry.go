package strategy

import (
	"fmt"

	"github.com/signalnine/ecoround/engine"
)

// Roster returns every first-phase policy in a fixed order.
func Roster() []engine.Strategy {
	return []engine.Strategy{
		SupportEnumerated(),
		ShortTerm(),
		EcoTil4(),
		EcoTilN(),
		EcoFirstN(),
		EcoFirstNStayAbove(),
		Random(),
		Champ(),
		BuyForNext(),
		NeverHalf(),
		EcoFirstNThenLittle(),
		EcoFirstNThenHalf(),
		EcoWhenDown(),
		BuyForNextTwo(),
	}
}

// HalftimeRoster returns the halftime-aware counterpart of every policy in
// Roster, in the same order.
func HalftimeRoster() []engine.Strategy {
	base := Roster()
	out := make([]engine.Strategy, len(base))
	for i, s := range base {
		out[i] = Halftime(s)
	}
	return out
}

// All returns Roster followed by HalftimeRoster.
func All() []engine.Strategy {
	return append(Roster(), HalftimeRoster()...)
}

// Names lists the names of every registered strategy.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	return names
}

// Lookup finds a registered strategy by name.
func Lookup(name string) (engine.Strategy, error) {
	for _, s := range All() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", engine.ErrConfiguration, name)
}

// LookupAll resolves a list of names, preserving order. An empty list
// resolves to the full first-phase roster.
func LookupAll(names []string) ([]engine.Strategy, error) {
	if len(names) == 0 {
		return Roster(), nil
	}
	out := make([]engine.Strategy, 0, len(names))
	for _, name := range names {
		s, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ResolveRoster is LookupAll, except that an empty list resolves to
// HalftimeRoster when halftime is set.
func ResolveRoster(names []string, halftime bool) ([]engine.Strategy, error) {
	if len(names) == 0 && halftime {
		return HalftimeRoster(), nil
	}
	return LookupAll(names)
}
