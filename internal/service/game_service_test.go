package service

import (
	"testing"

	"github.com/yuqie6/IdleForge/internal/eventbus"
	"github.com/yuqie6/IdleForge/internal/game"
)

type fakePublisher struct {
	events []eventbus.Event
}

func (p *fakePublisher) Publish(evt eventbus.Event) {
	p.events = append(p.events, evt)
}

func (p *fakePublisher) count(typ string) int {
	n := 0
	for _, e := range p.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func newFixtureCharacter() *game.Character {
	ch := game.NewCharacter("hero-1", "Hero", "ranger")
	ch.AddResource(game.NewResource(game.StatHealth, "Health", game.KindStat, 100, 100, 0))
	ch.AddResource(game.NewResource(game.StatStamina, "Stamina", game.KindStat, 100, 100, 0))
	ch.AddResource(game.NewResource("gold", "Gold", game.KindCurrency, 0, 1000, 0))
	ch.AddSkill(game.NewSkill("woodcutting", "Woodcutting", 0, []game.Bonus{
		{Level: 1, Type: BonusActionSpeed, Value: 0.5},
		{Level: 2, Type: BonusGainRate, Target: game.StatHealth, Value: 1},
		{Level: 2, Type: "unknown", Target: "x", Value: 1},
	}))

	ch.AddAction(game.NewAction(game.ActionConfig{
		ID:              "chop",
		Name:            "Chop",
		BaseDuration:    1000,
		Unlocked:        true,
		AutoRestart:     true,
		StatCosts:       map[string]float64{game.StatStamina: 10},
		CurrencyRewards: map[string]float64{"gold": 5},
		SkillExperience: map[string]float64{"woodcutting": 100},
	}))
	ch.AddAction(game.NewAction(game.ActionConfig{
		ID:           "rest",
		Name:         "Rest",
		BaseDuration: 1000,
		Unlocked:     true,
		IsRestAction: true,
		StatRewards:  map[string]float64{game.StatHealth: 20, game.StatStamina: 20},
	}))
	ch.AddAction(game.NewAction(game.ActionConfig{
		ID:           "sharp-axe",
		Name:         "Sharpen Axe",
		Unlocked:     true,
		IsUpgrade:    true,
		PurchaseCost: game.Costs{Currencies: map[string]float64{"gold": 10}},
		Upgrade:      &game.UpgradeEffect{Target: UpgradeTargetAction, Type: UpgradeTypeDuration, TargetID: "chop", Value: 0.5},
	}))
	ch.AddAction(game.NewAction(game.ActionConfig{
		ID:           "carve",
		Name:         "Carve",
		BaseDuration: 2000,
		Requirements: game.Requirements{Skills: map[string]int{"woodcutting": 1}},
	}))
	return ch
}

func newFixtureService(t *testing.T) (*GameService, *fakePublisher, *game.ManualClock) {
	t.Helper()
	clock := game.NewManualClock(1_000_000)
	pub := &fakePublisher{}
	g := NewGameService(newFixtureCharacter(), Options{Clock: clock, Publisher: pub, RNG: game.NewRNG(1)})
	return g, pub, clock
}

func TestTickAppliesCostsRewardsAndCommands(t *testing.T) {
	g, pub, _ := newFixtureService(t)
	ch := g.Character()

	if !g.StartAction("chop") {
		t.Fatalf("StartAction(chop) failed")
	}
	if rep := g.Tick(16); rep.Action != nil {
		t.Fatalf("first tick should only prime, got %+v", rep.Action)
	}

	rep := g.Tick(500)
	if rep.Action == nil || rep.Action.Progress != 50 {
		t.Fatalf("action=%+v, want progress 50", rep.Action)
	}
	if got := ch.StatCurrent(game.StatStamina); got != 95 {
		t.Fatalf("stamina=%v, want 95", got)
	}

	rep = g.Tick(500)
	if rep.Action == nil || !rep.Action.Completed {
		t.Fatalf("action=%+v, want completed", rep.Action)
	}
	if ch.CurrencyCurrent("gold") != 5 || ch.StatCurrent(game.StatStamina) != 90 {
		t.Fatalf("gold=%v stamina=%v, want 5/90", ch.CurrencyCurrent("gold"), ch.StatCurrent(game.StatStamina))
	}
	if ch.SkillLevel("woodcutting") != 1 {
		t.Fatalf("woodcutting level=%d, want 1", ch.SkillLevel("woodcutting"))
	}
	if len(rep.LevelUps) != 1 || rep.LevelUps[0].To != 1 {
		t.Fatalf("levelUps=%+v", rep.LevelUps)
	}
	// 同一 tick 内：升级加成生效，解锁检查看到新等级
	if got := ch.Action("chop").ModifiedDuration(); got != 500 {
		t.Fatalf("chop duration=%v, want 500 after speed bonus", got)
	}
	if len(rep.Unlocked) != 1 || rep.Unlocked[0] != "carve" || !ch.Action("carve").Unlocked {
		t.Fatalf("unlocked=%v", rep.Unlocked)
	}
	if g.ActiveAction() == nil || g.ActiveAction().ID != "chop" {
		t.Fatalf("auto restart action should stay active")
	}

	for typ, want := range map[string]int{
		eventbus.ActionStarted:   1,
		eventbus.ActionProgress:  2,
		eventbus.ActionCompleted: 1,
		eventbus.SkillExpGained:  1,
		eventbus.SkillLeveledUp:  1,
		eventbus.ActionUnlocked:  1,
		eventbus.ResourceCost:    2,
	} {
		if got := pub.count(typ); got != want {
			t.Errorf("%s events=%d, want %d", typ, got, want)
		}
	}
	if ch.LastTickAt != 1_000_000 {
		t.Fatalf("LastTickAt=%d", ch.LastTickAt)
	}
}

func TestRestInterruptsAndResumesAtHalf(t *testing.T) {
	g, pub, _ := newFixtureService(t)
	ch := g.Character()
	ch.Stats[game.StatStamina].Current = 4

	g.StartAction("chop")
	g.Tick(16)
	rep := g.Tick(500)
	if rep.Action == nil || !rep.Action.Failed() {
		t.Fatalf("action=%+v, want failure on stamina", rep.Action)
	}
	if !rep.RestStarted || g.ActiveAction() == nil || g.ActiveAction().ID != "rest" {
		t.Fatalf("rest should start in the same tick, active=%v", ch.ActiveActionID)
	}
	if ch.PendingResumeID != "chop" {
		t.Fatalf("pending=%q, want chop", ch.PendingResumeID)
	}
	if ch.StatCurrent(game.StatStamina) != 4 {
		t.Fatalf("failed tick must not apply costs, stamina=%v", ch.StatCurrent(game.StatStamina))
	}
	if pub.count(eventbus.ActionFailed) != 1 {
		t.Fatalf("failed events=%d", pub.count(eventbus.ActionFailed))
	}

	g.Tick(16) // 休息行动校准
	for i, wantStamina := range []float64{24, 44} {
		rep = g.Tick(1000)
		if rep.Action == nil || !rep.Action.Completed || rep.Resumed != "" {
			t.Fatalf("cycle %d: action=%+v resumed=%q", i, rep.Action, rep.Resumed)
		}
		if ch.StatCurrent(game.StatStamina) != wantStamina || g.ActiveAction().ID != "rest" {
			t.Fatalf("cycle %d: stamina=%v active=%s", i, ch.StatCurrent(game.StatStamina), ch.ActiveActionID)
		}
	}

	rep = g.Tick(1000)
	if rep.Resumed != "chop" {
		t.Fatalf("resumed=%q, want chop at 64%% stamina", rep.Resumed)
	}
	if g.ActiveAction() == nil || g.ActiveAction().ID != "chop" || ch.Action("rest").IsActive {
		t.Fatalf("active=%q rest active=%v", ch.ActiveActionID, ch.Action("rest").IsActive)
	}
	if ch.PendingResumeID != "" {
		t.Fatalf("pending should be cleared")
	}
}

func TestRestFinalizeResumesPending(t *testing.T) {
	g, _, _ := newFixtureService(t)
	ch := g.Character()
	ch.Stats[game.StatStamina].Current = 4
	ch.Action("rest").StatRewards[game.StatStamina] = 200

	g.StartAction("chop")
	g.Tick(16)
	g.Tick(500)
	g.Tick(16)
	rep := g.Tick(1000)
	if rep.Action == nil || !rep.Action.Stopped {
		t.Fatalf("rest should finalize once vitals are full: %+v", rep.Action)
	}
	if rep.Resumed != "chop" || ch.ActiveActionID != "chop" {
		t.Fatalf("resumed=%q active=%q", rep.Resumed, ch.ActiveActionID)
	}
}

func TestFailureWithoutRestActionJustStops(t *testing.T) {
	clock := game.NewManualClock(1)
	ch := newFixtureCharacter()
	ch.RestActionID = ""
	ch.Stats[game.StatStamina].Current = 0
	g := NewGameService(ch, Options{Clock: clock})

	g.StartAction("chop")
	g.Tick(16)
	rep := g.Tick(100)
	if !rep.Action.Failed() || rep.RestStarted || g.ActiveAction() != nil {
		t.Fatalf("rep=%+v active=%v", rep, g.ActiveAction())
	}
}

func TestStartAndStopAction(t *testing.T) {
	g, pub, _ := newFixtureService(t)
	ch := g.Character()

	if g.StartAction("missing") || g.StartAction("carve") {
		t.Fatalf("unknown or locked action should not start")
	}
	if g.StopAction() {
		t.Fatalf("StopAction with nothing active should return false")
	}

	g.StartAction("chop")
	ch.PendingResumeID = "chop"
	if !g.StartAction("rest") {
		t.Fatalf("StartAction(rest) failed")
	}
	if ch.Action("chop").IsActive || ch.ActiveActionID != "rest" || ch.PendingResumeID != "" {
		t.Fatalf("switching should stop chop and clear pending: active=%q pending=%q", ch.ActiveActionID, ch.PendingResumeID)
	}
	if g.StartAction("rest") {
		t.Fatalf("already active action should not restart")
	}

	if !g.StopAction() || g.ActiveAction() != nil {
		t.Fatalf("StopAction should stop rest")
	}
	if pub.count(eventbus.ActionStopped) != 2 {
		t.Fatalf("stopped events=%d, want 2", pub.count(eventbus.ActionStopped))
	}
}

func TestPurchaseUpgrade(t *testing.T) {
	g, pub, _ := newFixtureService(t)
	ch := g.Character()

	if g.PurchaseUpgrade("sharp-axe") {
		t.Fatalf("purchase without gold should fail")
	}
	if g.PurchaseUpgrade("chop") {
		t.Fatalf("non-upgrade action is not purchasable")
	}
	ch.Currencies["gold"].Current = 20
	if !g.PurchaseUpgrade("sharp-axe") {
		t.Fatalf("purchase should succeed")
	}
	if ch.CurrencyCurrent("gold") != 10 {
		t.Fatalf("gold=%v, want 10 after purchase", ch.CurrencyCurrent("gold"))
	}

	g.Tick(16)
	rep := g.Tick(game.DefaultUpgradeDurationMs)
	if rep.Action == nil || !rep.Action.Completed || !rep.Action.Stopped {
		t.Fatalf("upgrade should complete once and stop: %+v", rep.Action)
	}
	if got := ch.Action("chop").ModifiedDuration(); got != 500 {
		t.Fatalf("chop duration=%v, want 500", got)
	}
	if ch.Action("sharp-axe").CanStart() {
		t.Fatalf("one-time upgrade should not start again")
	}
	if pub.count(eventbus.ResourceUpgrade) != 1 {
		t.Fatalf("upgrade events=%d", pub.count(eventbus.ResourceUpgrade))
	}
	if len(g.Upgrades()) != 1 {
		t.Fatalf("upgrades=%d", len(g.Upgrades()))
	}
}

func TestResumedUpgradeIsNotChargedAgain(t *testing.T) {
	g, _, _ := newFixtureService(t)
	ch := g.Character()
	ch.AddAction(game.NewAction(game.ActionConfig{
		ID:           "forge",
		Name:         "Forge",
		BaseDuration: 100_000,
		Unlocked:     true,
		IsUpgrade:    true,
		StatCosts:    map[string]float64{game.StatStamina: 1},
		PurchaseCost: game.Costs{Currencies: map[string]float64{"gold": 40}},
		Upgrade:      &game.UpgradeEffect{Target: UpgradeTargetAction, Type: UpgradeTypeDuration, TargetID: "chop", Value: 0.5},
	}))
	ch.Currencies["gold"].Current = 100
	ch.Stats[game.StatStamina].Current = 1.5

	if !g.PurchaseUpgrade("forge") {
		t.Fatalf("purchase should succeed")
	}
	g.Tick(16)
	sawRest := false
	for i := 0; i < 6; i++ {
		rep := g.Tick(1000)
		sawRest = sawRest || rep.RestStarted
		if got := ch.CurrencyCurrent("gold"); got != 60 {
			t.Fatalf("tick %d: gold=%v, want 60", i, got)
		}
		if rep.Resumed != "" {
			if !sawRest || rep.Resumed != "forge" || ch.ActiveActionID != "forge" {
				t.Fatalf("resumed=%q active=%q rest=%v", rep.Resumed, ch.ActiveActionID, sawRest)
			}
			return
		}
	}
	t.Fatalf("upgrade never resumed, active=%q pending=%q", ch.ActiveActionID, ch.PendingResumeID)
}

func TestApplyUpgradeDefects(t *testing.T) {
	g, _, _ := newFixtureService(t)
	ch := g.Character()
	ch.AddAction(game.NewAction(game.ActionConfig{ID: "broken", Name: "Broken", IsUpgrade: true, Unlocked: true}))
	ch.AddAction(game.NewAction(game.ActionConfig{
		ID: "ghost", Name: "Ghost", IsUpgrade: true, Unlocked: true,
		Upgrade: &game.UpgradeEffect{Target: UpgradeTargetStat, Type: UpgradeTypeMax, TargetID: "mana", Value: 10},
	}))
	ch.AddAction(game.NewAction(game.ActionConfig{
		ID: "bigger-pack", Name: "Bigger Pack", IsUpgrade: true, Unlocked: true,
		Upgrade: &game.UpgradeEffect{Target: UpgradeTargetStat, Type: UpgradeTypeMax, TargetID: game.StatStamina, Value: 50},
	}))

	if g.ApplyUpgrade("broken") || g.ApplyUpgrade("ghost") || g.ApplyUpgrade("chop") {
		t.Fatalf("defective upgrades should be skipped")
	}
	if !g.ApplyUpgrade("bigger-pack") || ch.StatMax(game.StatStamina) != 150 {
		t.Fatalf("stamina max=%v, want 150", ch.StatMax(game.StatStamina))
	}
}

func TestApplyAllSkillBonusesIsIdempotent(t *testing.T) {
	g, _, _ := newFixtureService(t)
	ch := g.Character()
	ch.Skills["woodcutting"].CurrentLevel = 2

	g.ApplyAllSkillBonuses()
	g.ApplyAllSkillBonuses()

	if n := len(ch.Action("chop").Modifiers()); n != 1 {
		t.Fatalf("chop modifiers=%d, want 1", n)
	}
	if got := ch.Action("chop").ModifiedDuration(); got != 500 {
		t.Fatalf("duration=%v, want 500", got)
	}
	health := ch.Stats[game.StatHealth]
	if n := len(health.Modifiers()); n != 1 || health.EffectiveGainRate() != 1 {
		t.Fatalf("health modifiers=%d rate=%v", n, health.EffectiveGainRate())
	}
}

func TestCheckUnlocksOutsideTick(t *testing.T) {
	g, pub, _ := newFixtureService(t)
	if got := g.CheckUnlocks(); len(got) != 0 {
		t.Fatalf("unlocked=%v, want none", got)
	}
	g.Character().Skills["woodcutting"].CurrentLevel = 1
	if got := g.CheckUnlocks(); len(got) != 1 || got[0] != "carve" {
		t.Fatalf("unlocked=%v, want [carve]", got)
	}
	if got := g.CheckUnlocks(); len(got) != 0 {
		t.Fatalf("second pass unlocked=%v", got)
	}
	if pub.count(eventbus.ActionUnlocked) != 1 {
		t.Fatalf("unlock events=%d", pub.count(eventbus.ActionUnlocked))
	}
}

func TestCommandQueueCap(t *testing.T) {
	g, _, _ := newFixtureService(t)
	for i := 0; i < maxCommandsPerTick+10; i++ {
		g.enqueue(command{kind: cmdCheckUnlocks})
	}
	g.drain()
	if len(g.queue) != 0 {
		t.Fatalf("queue=%d after drain", len(g.queue))
	}
}
