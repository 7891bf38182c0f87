/*
Package phase holds the game's progression stage.

PHASES:
  job      Working a day job. No module runs on the monthly tick.
  company  Founded a company: talent and products run.
  research Founded a lab: researchers, hardware and the tech tree run.
  agi      Reached general intelligence: everything keeps running.

TRANSITIONS:
  Enter is unconditional. The orchestrator decides when to call it:
  threshold actions (found company, found lab) and milestone rules fed by
  tech tree completion events.

SEE ALSO:
  - game/game.go: FoundCompany, FoundLab, milestone handling
*/
package phase

import (
	"fmt"

	"github.com/warp/march-of-mind/generic"
)

type Phase string

const (
	Job      Phase = "job"
	Company  Phase = "company"
	Research Phase = "research"
	AGI      Phase = "agi"
)

var titles = map[Phase]string{
	Job:      "Day Job",
	Company:  "Startup",
	Research: "Research Lab",
	AGI:      "Artificial General Intelligence",
}

// Parse validates a phase name.
func Parse(s string) (Phase, error) {
	p := Phase(s)
	if _, ok := titles[p]; !ok {
		return "", fmt.Errorf("%w: %q", generic.ErrInvalidPhase, s)
	}
	return p, nil
}

func (p Phase) String() string { return string(p) }

// Modules lists which monthly updates run in a phase.
type Modules struct {
	Talent      bool
	Products    bool
	Researchers bool
	Hardware    bool
	TechTree    bool
}

// Any reports whether any module runs.
func (m Modules) Any() bool {
	return m.Talent || m.Products || m.Researchers || m.Hardware || m.TechTree
}

// =============================================================================
// MILESTONES
// =============================================================================

// Milestone enters a phase when a tech item completes. ItemID matches one
// item; FirstOfKind matches the first completion of a kind. Forward rules
// never move the game back to an earlier phase.
type Milestone struct {
	ItemID      string `yaml:"item,omitempty"`
	FirstOfKind string `yaml:"first_of_kind,omitempty"`
	Enter       Phase  `yaml:"enter"`
}

// Matches reports whether a completion triggers the rule.
func (m Milestone) Matches(itemID, kind string, firstOfKind bool) bool {
	if m.ItemID != "" {
		return m.ItemID == itemID
	}
	return m.FirstOfKind != "" && m.FirstOfKind == kind && firstOfKind
}

// DefaultMilestones makes the AGI breakthrough discovery end the lab phase.
func DefaultMilestones() []Milestone {
	return []Milestone{{ItemID: "agi_breakthrough", Enter: AGI}}
}

// =============================================================================
// MACHINE
// =============================================================================

type Machine struct {
	current    Phase
	milestones []Milestone
}

// NewMachine validates the milestone targets. The machine starts in Job.
func NewMachine(milestones []Milestone) (*Machine, error) {
	for i, m := range milestones {
		if _, err := Parse(string(m.Enter)); err != nil {
			return nil, &generic.ConfigError{Source: "milestones", Field: fmt.Sprintf("[%d].enter", i), Reason: err.Error()}
		}
		if m.ItemID == "" && m.FirstOfKind == "" {
			return nil, &generic.ConfigError{Source: "milestones", Field: fmt.Sprintf("[%d]", i), Reason: "needs item or first_of_kind"}
		}
	}
	return &Machine{current: Job, milestones: milestones}, nil
}

func (m *Machine) Enter(p Phase)  { m.current = p }
func (m *Machine) Current() Phase { return m.current }
func (m *Machine) Title() string  { return titles[m.current] }
func (m *Machine) Reset()         { m.current = Job }
func (m *Machine) IsIdle() bool   { return m.current == Job }

// HasFoundedCompany is true from the company phase onward.
func (m *Machine) HasFoundedCompany() bool {
	return m.order() >= order(Company)
}

// HasFoundedLab is true from the research phase onward.
func (m *Machine) HasFoundedLab() bool {
	return m.order() >= order(Research)
}

// ActiveModules returns the monthly updates for the current phase.
func (m *Machine) ActiveModules() Modules {
	switch m.current {
	case Company:
		return Modules{Talent: true, Products: true}
	case Research, AGI:
		return Modules{Talent: true, Products: true, Researchers: true, Hardware: true, TechTree: true}
	}
	return Modules{}
}

// Resolve returns the phase a completion moves the game to, if any rule
// matches and the target is later than the current phase.
func (m *Machine) Resolve(itemID, kind string, firstOfKind bool) (Phase, bool) {
	for _, rule := range m.milestones {
		if rule.Matches(itemID, kind, firstOfKind) && order(rule.Enter) > m.order() {
			return rule.Enter, true
		}
	}
	return "", false
}

func (m *Machine) order() int { return order(m.current) }

func order(p Phase) int {
	switch p {
	case Company:
		return 1
	case Research:
		return 2
	case AGI:
		return 3
	}
	return 0
}

type Save struct {
	GamePhase string `json:"gamePhase"`
}

func (m *Machine) Save() Save { return Save{GamePhase: string(m.current)} }

// Load restores the phase; an empty value means Job.
func (m *Machine) Load(s Save) error {
	if s.GamePhase == "" {
		m.current = Job
		return nil
	}
	p, err := Parse(s.GamePhase)
	if err != nil {
		return err
	}
	m.current = p
	return nil
}
