package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/IdleForge/internal/game"
	"github.com/yuqie6/IdleForge/internal/schema"
)

type fakeSaveRepo struct {
	items map[string]schema.SaveSlot
}

func newFakeSaveRepo() *fakeSaveRepo {
	return &fakeSaveRepo{items: make(map[string]schema.SaveSlot)}
}

func (r *fakeSaveRepo) Upsert(ctx context.Context, slot *schema.SaveSlot) error {
	r.items[slot.ID] = *slot
	return nil
}
func (r *fakeSaveRepo) GetByID(ctx context.Context, id string) (*schema.SaveSlot, error) {
	if s, ok := r.items[id]; ok {
		copy := s
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeSaveRepo) List(ctx context.Context) ([]schema.SaveSlot, error) {
	out := make([]schema.SaveSlot, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	return out, nil
}
func (r *fakeSaveRepo) Delete(ctx context.Context, id string) error {
	delete(r.items, id)
	return nil
}

type fixtureFactory struct{}

func (fixtureFactory) NewCharacter(name, class string) (*game.Character, error) {
	ch := newFixtureCharacter()
	ch.ID = ""
	ch.Name = name
	ch.Class = class
	return ch, nil
}

func TestSaveServiceRoundTrip(t *testing.T) {
	repo := newFakeSaveRepo()
	clock := game.NewManualClock(42_000)
	svc := NewSaveService(repo, clock)
	ctx := context.Background()

	g := NewGameService(newFixtureCharacter(), Options{Clock: clock})
	ch := g.Character()
	ch.ID = ""
	g.StartAction("chop")
	g.Tick(16)
	g.Tick(1000)

	slot, err := svc.Save(ctx, ch)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if slot.ID == "" || ch.ID != slot.ID || slot.SavedAt != 42_000 {
		t.Fatalf("slot=%+v ch.ID=%q", slot, ch.ID)
	}
	if schema.GetString(slot.Summary, "active") != "chop" || schema.GetInt(slot.Summary, "totalLevel") != 1 {
		t.Fatalf("summary=%v", slot.Summary)
	}

	loaded, err := svc.Load(ctx, slot.ID, fixtureFactory{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ID != ch.ID || loaded.CurrencyCurrent("gold") != ch.CurrencyCurrent("gold") ||
		loaded.SkillLevel("woodcutting") != 1 || loaded.ActiveActionID != "chop" {
		t.Fatalf("loaded=%+v", loaded.Serialize())
	}

	want, _ := ch.Encode()
	got, _ := loaded.Encode()
	if string(want) != string(got) {
		t.Fatalf("payload mismatch:\n got %s\nwant %s", got, want)
	}

	// 载入后重放加成，修正数量不变
	g2 := NewGameService(loaded, Options{Clock: clock})
	before := len(loaded.Action("chop").Modifiers())
	g2.ApplyAllSkillBonuses()
	if after := len(loaded.Action("chop").Modifiers()); after != before {
		t.Fatalf("modifiers %d -> %d after reapply", before, after)
	}
}

func TestSaveServiceLoadErrors(t *testing.T) {
	repo := newFakeSaveRepo()
	svc := NewSaveService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Load(ctx, "missing", fixtureFactory{}); !errors.Is(err, ErrSaveNotFound) {
		t.Fatalf("err=%v, want ErrSaveNotFound", err)
	}

	repo.items["future"] = schema.SaveSlot{ID: "future", Payload: "{}", FormatVersion: schema.SaveFormatVersion + 1}
	if _, err := svc.Load(ctx, "future", fixtureFactory{}); err == nil {
		t.Fatalf("newer format should be rejected")
	}

	repo.items["broken"] = schema.SaveSlot{ID: "broken", Payload: "{oops", FormatVersion: schema.SaveFormatVersion}
	if _, err := svc.Load(ctx, "broken", fixtureFactory{}); err == nil {
		t.Fatalf("corrupted payload should return an error")
	}

	if _, err := svc.Save(ctx, nil); err == nil {
		t.Fatalf("nil character should be rejected")
	}
}
