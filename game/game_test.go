package game_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/march-of-mind/clock"
	"github.com/warp/march-of-mind/factory"
	"github.com/warp/march-of-mind/game"
	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/generic/store"
	"github.com/warp/march-of-mind/phase"
	"github.com/warp/march-of-mind/techtree"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const saveKey = "marchOfMindSave"

type fixture struct {
	balance factory.Balance
	catalog factory.Catalog
	store   generic.Store
	clock   *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bal, err := factory.DefaultBalance()
	require.NoError(t, err)
	cat, err := factory.DefaultCatalog()
	require.NoError(t, err)
	return &fixture{
		balance: bal,
		catalog: cat,
		store:   store.NewMemory(),
		clock:   clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func (f *fixture) game(t *testing.T, obs game.Observer) *game.Game {
	t.Helper()
	g, err := game.New(game.Options{
		Balance:  f.balance,
		Catalog:  f.catalog,
		Store:    f.store,
		Clock:    f.clock,
		Logger:   log.New(io.Discard),
		Observer: obs,
	})
	require.NoError(t, err)
	t.Cleanup(g.Stop)
	return g
}

func work(g *game.Game, n int) {
	for i := 0; i < n; i++ {
		g.Work()
	}
}

func money(g *game.Game) float64    { return g.View().Resources[generic.ResourceMoney] }
func insights(g *game.Game) float64 { return g.View().Resources[generic.ResourceInsights] }

type failingStore struct{ err error }

func (s failingStore) Get(context.Context, string) (string, bool, error) { return "", false, s.err }
func (s failingStore) Set(context.Context, string, string) error         { return s.err }
func (s failingStore) Remove(context.Context, string) error              { return s.err }

type recorder struct {
	months  int
	saves   int
	actions []string
}

func (r *recorder) MonthProcessed(phase.Phase) { r.months++ }
func (r *recorder) Saved(err error) {
	if err == nil {
		r.saves++
	}
}
func (r *recorder) Loaded(bool, error) {}
func (r *recorder) ActionTaken(name string, _ bool) {
	r.actions = append(r.actions, name)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestLoadGame_AbsentSaveKeepsDefaults(t *testing.T) {
	g := newFixture(t).game(t, nil)

	found, err := g.LoadGame(context.Background())
	require.NoError(t, err)
	assert.False(t, found)

	v := g.View()
	assert.Equal(t, phase.Job, v.Phase)
	assert.Equal(t, "January 1950", v.DisplayDate)
	assert.Zero(t, v.Resources[generic.ResourceMoney])
	assert.Zero(t, v.Talent.Count)
	assert.Equal(t, 0.5, v.Researchers.Allocation)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	// GIVEN: A founded company with one talent and one month played
	// WHEN: Saving and loading into a fresh game on the same store
	// THEN: Every observable value matches

	f := newFixture(t)
	g := f.game(t, nil)
	work(g, 150)
	require.True(t, g.FoundCompany())
	ok, err := g.Hire("talent")
	require.NoError(t, err)
	require.True(t, ok)
	g.AdvanceMonths(1)
	require.NoError(t, g.SaveGame(context.Background()))

	other := f.game(t, nil)
	found, err := other.LoadGame(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	before, after := g.View(), other.View()
	assert.Equal(t, before.Phase, after.Phase)
	assert.Equal(t, before.ElapsedMonths, after.ElapsedMonths)
	assert.Equal(t, before.DisplayDate, after.DisplayDate)
	assert.Equal(t, before.Talent.Count, after.Talent.Count)
	assert.InDelta(t, before.Resources[generic.ResourceMoney], after.Resources[generic.ResourceMoney], 1e-9)
	assert.InDelta(t, before.Resources[generic.ResourceInsights], after.Resources[generic.ResourceInsights], 1e-9)
	assert.Equal(t, before.Products.Available, after.Products.Available)
	assert.Equal(t, before.TechTree.Items, after.TechTree.Items)
	assert.False(t, after.LastSavedAt.IsZero())
}

func TestLoadGame_MalformedSaveLeavesMemory(t *testing.T) {
	tests := map[string]string{
		"not json":      "{not json",
		"unknown phase": `{"phase":{"gamePhase":"retired"}}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			g := f.game(t, nil)
			work(g, 3)
			require.NoError(t, f.store.Set(context.Background(), saveKey, raw))

			found, err := g.LoadGame(context.Background())
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, 3.0, money(g))
		})
	}
}

func TestLoadGame_AbsentSectionsReset(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, nil)
	work(g, 7)
	require.NoError(t, f.store.Set(context.Background(), saveKey,
		`{"phase":{"gamePhase":"company"},"resources":{"money":42}}`))

	found, err := g.LoadGame(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	v := g.View()
	assert.Equal(t, phase.Company, v.Phase)
	assert.Equal(t, 42.0, v.Resources[generic.ResourceMoney])
	assert.Zero(t, v.Resources[generic.ResourceInsights])
	assert.Zero(t, v.ElapsedMonths)
	assert.Equal(t, 0.5, v.Researchers.Allocation)
	assert.Equal(t, 0.5, v.TechTree.ProductShare)
}

func TestLoadGame_BackendErrorIsReturned(t *testing.T) {
	f := newFixture(t)
	f.store = failingStore{err: errors.New("disk on fire")}
	g := f.game(t, nil)

	found, err := g.LoadGame(context.Background())
	assert.False(t, found)
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrLoadFailed)

	var se *generic.SaveError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, saveKey, se.Key)

	assert.ErrorIs(t, g.SaveGame(context.Background()), generic.ErrSaveFailed)
}

func TestInit_BackendErrorStillStartsClock(t *testing.T) {
	f := newFixture(t)
	f.store = failingStore{err: errors.New("unreachable")}
	g := f.game(t, nil)

	err := g.Init(context.Background())
	assert.ErrorIs(t, err, generic.ErrLoadFailed)
	assert.True(t, g.View().Running)
	assert.Equal(t, "January 1950", g.View().DisplayDate)
}

func TestResetGame_WipesStateAndSave(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, nil)
	work(g, 5)
	require.NoError(t, g.SaveGame(context.Background()))

	require.NoError(t, g.ResetGame(context.Background()))

	assert.Zero(t, money(g))
	_, ok, err := f.store.Get(context.Background(), saveKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, g.View().Running)
}

// =============================================================================
// MONTHLY UPDATE
// =============================================================================

func TestProcessMonth_JobPhaseOnlyAdvancesAndSaves(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	g := f.game(t, rec)
	work(g, 5)

	assert.Equal(t, 3, g.AdvanceMonths(3))

	assert.Equal(t, 5.0, money(g))
	assert.Equal(t, "April 1950", g.View().DisplayDate)
	assert.Equal(t, 3, rec.months)
	assert.Equal(t, 3, rec.saves)
	_, ok, err := f.store.Get(context.Background(), saveKey)
	require.NoError(t, err)
	assert.True(t, ok, "autosaved")
}

func TestProcessMonth_TalentUpkeepDrivesMoneyNegative(t *testing.T) {
	// GIVEN: 100 money spent founding, then 50 more on one talent (money 0)
	// WHEN: One month passes
	// THEN: money = 0 + (5 - 15) = -10 and the talent yields 0.02 insights

	g := newFixture(t).game(t, nil)
	work(g, 150)
	require.True(t, g.FoundCompany())
	ok, err := g.Hire("talent")
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, money(g))

	g.ProcessOneMonth()

	assert.Equal(t, -10.0, money(g))
	assert.InDelta(t, 0.02, insights(g), 1e-12)
}

func TestProcessMonth_PositiveResearcherNetFundsSavings(t *testing.T) {
	f := newFixture(t)
	f.balance.Roles.Researcher.Income = 25
	g := f.game(t, nil)
	require.NoError(t, g.EnterPhase("research"))
	work(g, 10)
	ok, err := g.Hire("researcher")
	require.NoError(t, err)
	require.True(t, ok)

	g.ProcessOneMonth()

	v := g.View()
	assert.Equal(t, 5.0, v.Resources[generic.ResourceMoney], "half of the +10 net is diverted")
	assert.Equal(t, 5.0, v.Hardware.Savings)
}

func TestProcessMonth_FixedOrder(t *testing.T) {
	// GIVEN: A research lab with one talent, one earning researcher, a
	//        launched product and a completed research product
	// WHEN: One month is processed
	// THEN: The journal shows staff upkeep, savings, insights, product
	//       income and research income, in that order

	f := newFixture(t)
	f.balance.Roles.Researcher.Income = 25
	f.balance.Roles.Researcher.InsightsPerMonth = 0.1
	require.NoError(t, f.store.Set(context.Background(), saveKey, `{
		"phase": {"gamePhase": "research"},
		"resources": {"money": 1000, "insights": 100},
		"talent": {"count": 1, "hasHired": true},
		"researchers": {"count": 1, "hasHired": true, "allocation": 0.5},
		"products": {"hasProduct": true, "hasLaunchedFirst": true, "activeProducts": [
			{"id": "calculator", "name": "Electronic Calculator", "year": 1950, "baseCost": 1, "baseIncome": 10,
			 "launched": true, "saturation": 30, "currentIncome": 10}
		]},
		"techTree": {"completedIds": ["game_ai"], "unlockedIds": [], "progressById": {}}
	}`))
	g := f.game(t, nil)
	found, err := g.LoadGame(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	g.ProcessOneMonth()

	var reasons []string
	for _, e := range g.Journal() {
		reasons = append(reasons, e.Reason)
	}
	assert.Equal(t, []string{
		"upkeep:talent",
		"upkeep:researcher",
		"hardware savings",
		"insights:talent",
		"insights:researcher",
		"product income",
		"income:research products",
	}, reasons)
}

func TestJournal_StampsClosingMonth(t *testing.T) {
	// GIVEN: A company with one talent
	// WHEN: Two months are advanced and the player then works
	// THEN: Each upkeep entry carries the month it closed and the work
	//       entry carries the month in progress

	g := newFixture(t).game(t, nil)
	work(g, 150)
	require.True(t, g.FoundCompany())
	ok, err := g.Hire("talent")
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, 2, g.AdvanceMonths(2))
	g.Work()

	var upkeep []int
	for _, e := range g.Journal() {
		if e.Reason == "upkeep:talent" {
			upkeep = append(upkeep, e.Month)
		}
	}
	assert.Equal(t, []int{1, 2}, upkeep)

	j := g.Journal()
	last := j[len(j)-1]
	assert.Equal(t, "work", last.Reason)
	assert.Equal(t, 3, last.Month)
}

func TestProcessMonth_ResearchCompletionEntersAGI(t *testing.T) {
	// GIVEN: A research lab working on the AGI milestone with one researcher
	// WHEN: One month of hardware work completes it
	// THEN: The milestone rule moves the game to the AGI phase

	f := newFixture(t)
	f.catalog.TechTree = techtree.Catalog{
		Roots: []string{"agi_breakthrough"},
		Items: []techtree.Item{
			{ID: "agi_breakthrough", Name: "AGI", Kind: techtree.KindDiscovery, WorkRequired: 50, Boost: 3},
		},
	}
	g := f.game(t, nil)
	require.NoError(t, g.EnterPhase("research"))
	work(g, 10)
	ok, err := g.Hire("researcher")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = g.Unlock("agi_breakthrough")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = g.SelectDiscovery("agi_breakthrough")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, g.SetWorkSplit(0))

	g.ProcessOneMonth()

	v := g.View()
	assert.Equal(t, phase.AGI, v.Phase)
	assert.Equal(t, 3.0, v.TechTree.TotalMultiplier)
	assert.Equal(t, techtree.StateComplete, v.TechTree.Items[0].State)
}

func TestAdvanceMonths_StopsAtEndYear(t *testing.T) {
	f := newFixture(t)
	f.balance.Time.EndYear = 1950
	g := f.game(t, nil)

	assert.Equal(t, 12, g.AdvanceMonths(24))
	assert.True(t, g.View().Finished)
	assert.Zero(t, g.AdvanceMonths(1))
}

// =============================================================================
// ACTIONS
// =============================================================================

func TestFoundCompany_RequiresMoneyAndJobPhase(t *testing.T) {
	g := newFixture(t).game(t, nil)
	work(g, 99)
	assert.False(t, g.FoundCompany())
	assert.InDelta(t, 0.99, g.View().Founding.CompanyProgress, 1e-9)

	g.Work()
	assert.True(t, g.View().Founding.CanFoundCompany)
	assert.True(t, g.FoundCompany())
	assert.Equal(t, phase.Company, g.View().Phase)
	assert.Zero(t, money(g))
	assert.False(t, g.FoundCompany(), "only from the job phase")
}

func TestFoundLab_PaidInInsights(t *testing.T) {
	g := newFixture(t).game(t, nil)
	require.NoError(t, g.EnterPhase("company"))
	assert.False(t, g.FoundLab())

	for i := 0; i < 10; i++ {
		g.Think()
	}
	assert.Equal(t, 10.0, insights(g))
	assert.True(t, g.FoundLab())
	assert.Equal(t, phase.Research, g.View().Phase)
	assert.Zero(t, insights(g))
}

func TestHire_UnknownRoleAndInactiveModule(t *testing.T) {
	g := newFixture(t).game(t, nil)
	work(g, 100)

	ok, err := g.Hire("janitor")
	assert.False(t, ok)
	assert.True(t, generic.IsNotFound(err))
	assert.ErrorIs(t, err, generic.ErrUnknownRole)

	ok, err = g.Hire("talent")
	require.NoError(t, err)
	assert.False(t, ok, "no company yet")

	ok, err = g.Fire("talent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTechActions_UnknownItem(t *testing.T) {
	g := newFixture(t).game(t, nil)

	_, err := g.Unlock("time_machine")
	assert.ErrorIs(t, err, generic.ErrUnknownItem)
	_, err = g.ApplyWork("time_machine", 1)
	assert.ErrorIs(t, err, generic.ErrUnknownItem)
	_, err = g.Select("time_machine")
	assert.ErrorIs(t, err, generic.ErrUnknownItem)
}

func TestDepositSavings_ThenUpgrade(t *testing.T) {
	g := newFixture(t).game(t, nil)
	require.NoError(t, g.EnterPhase("research"))
	next := g.View().Hardware.Next
	require.NotNil(t, next)

	assert.False(t, g.DepositSavings(next.Cost), "no money")
	work(g, int(next.Cost))
	require.True(t, g.DepositSavings(next.Cost))
	assert.True(t, g.View().Hardware.CanUpgrade)

	require.True(t, g.Upgrade())
	v := g.View()
	assert.Equal(t, next.ID, v.Hardware.Current.ID)
	assert.Zero(t, v.Hardware.Savings)
}

func TestEnterPhase_RejectsUnknown(t *testing.T) {
	g := newFixture(t).game(t, nil)
	assert.ErrorIs(t, g.EnterPhase("retired"), generic.ErrInvalidPhase)
	assert.Equal(t, phase.Job, g.View().Phase)
}

func TestPauseResume(t *testing.T) {
	rec := &recorder{}
	g := newFixture(t).game(t, rec)

	g.Pause()
	assert.True(t, g.View().Paused)
	g.Resume()
	assert.False(t, g.View().Paused)
	assert.Equal(t, []string{"pause", "resume"}, rec.actions)
}

func TestJournal_RecordsReasons(t *testing.T) {
	g := newFixture(t).game(t, nil)
	g.Work()

	j := g.Journal()
	require.Len(t, j, 1)
	assert.Equal(t, "work", j[0].Reason)
	assert.Equal(t, "1", j[0].Balance.String())
}
