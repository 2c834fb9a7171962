package motor

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Manufacturer is a motor manufacturer known under one or more aliases.
type Manufacturer struct {
	displayName string
	simpleName  string
	motorType   MotorType
	aliases     []string // normalized
}

// DisplayName is the full name shown to users.
func (m *Manufacturer) DisplayName() string { return m.displayName }

// SimpleName is the short name used in designations and file names.
func (m *Manufacturer) SimpleName() string { return m.simpleName }

// MotorType is the category this manufacturer typically builds.
func (m *Manufacturer) MotorType() MotorType { return m.motorType }

// Matches reports whether name is one of the manufacturer's aliases.
func (m *Manufacturer) Matches(name string) bool {
	key := normalizeName(name)
	for _, a := range m.aliases {
		if a == key {
			return true
		}
	}
	return false
}

func (m *Manufacturer) String() string { return m.displayName }

// Registry resolves manufacturer names and aliases. It is safe for
// concurrent use; build one with NewRegistry and pass it to whoever needs to
// resolve names.
type Registry struct {
	mu      sync.RWMutex
	byAlias map[string]*Manufacturer
	all     []*Manufacturer
}

// NewEmptyRegistry returns a registry that knows no manufacturers.
func NewEmptyRegistry() *Registry {
	return &Registry{byAlias: make(map[string]*Manufacturer)}
}

// NewRegistry returns a registry preloaded with the common hobby motor
// manufacturers.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	r.Register("AeroTech", "AeroTech", TypeUnknown, "A", "AT", "AERO", "AEROT", "ISP", "AEROTECH-RMS", "AEROTECH/APOGEE")
	r.Register("Alpha Hybrid Rocketry LLC", "Alpha Hybrid", TypeHybrid, "AHR", "ALPHA", "ALPHA HYBRIDS", "ALPHA HYBRIDS INC")
	r.Register("Animal Motor Works", "AMW", TypeReload, "AMW", "AW", "ANIMAL")
	r.Register("Apogee", "Apogee", TypeSingleUse, "AP", "APOG", "P")
	r.Register("Cesaroni Technology Inc.", "Cesaroni", TypeReload, "CES", "CESARONI", "CESARONI TECHNOLOGY INCORPORATED", "CTI", "CS", "CSR", "PRO38", "ABC")
	r.Register("Contrail Rockets", "Contrail", TypeHybrid, "CR", "CONTR", "CONTRAIL", "CONTRAIL ROCKET")
	r.Register("Ellis Mountain", "Ellis Mountain", TypeSingleUse, "EM", "ELLIS", "ELLIS MOUNTAIN ROCKET", "ELLIS MOUNTAIN ROCKETS")
	r.Register("Estes", "Estes", TypeSingleUse, "E", "ES")
	r.Register("Gorilla Rocket Motors", "Gorilla", TypeReload, "GR", "GORILLA", "GORILLA ROCKET", "GORILLA ROCKETS", "GORILLA MOTORS", "GORILLA ROCKET MOTOR")
	r.Register("HyperTEK", "HyperTEK", TypeHybrid, "H", "HT", "HYPER")
	r.Register("Kosdon by AeroTech", "Kosdon", TypeReload, "K", "KBA", "K-AT", "KOS", "KOSDON", "KOSDON/AT", "KOSDON/AEROTECH")
	r.Register("Loki Research", "Loki", TypeReload, "LOKI", "LR")
	r.Register("Public Missiles, Ltd.", "PML", TypeReload, "PM", "PML", "PUBLIC MISSILES LIMITED")
	r.Register("Quest", "Quest", TypeSingleUse, "Q", "QU")
	r.Register("RATT Works", "RATT Works", TypeHybrid, "RATT", "RT", "RTW")
	r.Register("Roadrunner Rocketry", "Roadrunner", TypeSingleUse, "RR", "ROADRUNNER")
	r.Register("Sky Ripper Systems", "Sky Ripper", TypeHybrid, "SR", "SRS", "SKYR", "SKYRIPPER", "SKY RIPPER", "SKYRIPPER SYSTEMS")
	r.Register("West Coast Hybrids", "WCH", TypeHybrid, "WCH", "WCR", "WEST COAST", "WEST COAST HYBRID")
	r.Register("WECO Feuerwerk", "WECO", TypeSingleUse, "WECO", "WECO FEUERWERKS", "WECO FEUERWERK", "WEC", "WF")
	r.Register("Klima", "Klima", TypeSingleUse, "KLIMA", "KL")
	return r
}

// Register adds a manufacturer. The display and simple names are always
// aliases. An alias already claimed by another manufacturer keeps its
// original owner.
func (r *Registry) Register(displayName, simpleName string, t MotorType, aliases ...string) *Manufacturer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(displayName, simpleName, t, aliases...)
}

func (r *Registry) registerLocked(displayName, simpleName string, t MotorType, aliases ...string) *Manufacturer {
	m := &Manufacturer{displayName: displayName, simpleName: simpleName, motorType: t}
	names := append([]string{displayName, simpleName}, aliases...)
	for _, n := range names {
		key := normalizeName(n)
		if key == "" {
			continue
		}
		m.aliases = append(m.aliases, key)
		if _, taken := r.byAlias[key]; !taken {
			r.byAlias[key] = m
		}
	}
	r.all = append(r.all, m)
	return m
}

// Lookup returns the manufacturer known under name.
func (r *Registry) Lookup(name string) (*Manufacturer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byAlias[normalizeName(name)]
	return m, ok
}

// Get returns the manufacturer known under name, registering a new one of
// unknown type when the name has not been seen before.
func (r *Registry) Get(name string) *Manufacturer {
	if m, ok := r.Lookup(name); ok {
		return m
	}
	name = strings.TrimSpace(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have registered it meanwhile.
	if m, ok := r.byAlias[normalizeName(name)]; ok {
		return m
	}
	return r.registerLocked(name, name, TypeUnknown)
}

// All returns every registered manufacturer sorted by display name.
func (r *Registry) All() []*Manufacturer {
	r.mu.RLock()
	out := append([]*Manufacturer(nil), r.all...)
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].displayName < out[j].displayName })
	return out
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, c := range strings.ToUpper(name) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
