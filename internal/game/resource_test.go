package game

import "testing"

func TestResourceAddClampsAndUnlocks(t *testing.T) {
	r := NewResource("gold", "Gold", KindCurrency, 0, 10, 0)
	if r.Unlocked || r.Visible {
		t.Fatalf("empty resource should start locked")
	}

	got := r.Add(15)
	if got != 10 || r.Current != 10 {
		t.Fatalf("add=%v current=%v, want 10/10", got, r.Current)
	}
	if !r.Unlocked || !r.Visible {
		t.Fatalf("resource should unlock once current > 0")
	}
	if r.LifetimeGained != 10 {
		t.Fatalf("lifetime=%v, want 10", r.LifetimeGained)
	}

	if got := r.AddUncapped(5); got != 5 || r.Current != 15 {
		t.Fatalf("uncapped add=%v current=%v, want 5/15", got, r.Current)
	}
}

func TestResourceAddNonPositiveIsNoop(t *testing.T) {
	r := NewResource("gold", "Gold", KindCurrency, 3, 10, 0)
	for _, amount := range []float64{0, -1, -100} {
		if got := r.Add(amount); got != 0 {
			t.Fatalf("Add(%v)=%v, want 0", amount, got)
		}
	}
	if r.Current != 3 || r.LifetimeGained != 0 {
		t.Fatalf("current=%v lifetime=%v, want 3/0", r.Current, r.LifetimeGained)
	}
}

func TestResourceSubtract(t *testing.T) {
	r := NewResource("stamina", "Stamina", KindStat, 5, 10, 0)

	if !r.Subtract(0) || !r.Subtract(-2) || r.Current != 5 {
		t.Fatalf("non-positive subtract should be a successful no-op, current=%v", r.Current)
	}
	if r.Subtract(6) {
		t.Fatalf("subtract beyond current should fail")
	}
	if r.Current != 5 {
		t.Fatalf("failed subtract mutated current=%v", r.Current)
	}
	if !r.Subtract(5) || r.Current != 0 {
		t.Fatalf("exact subtract failed, current=%v", r.Current)
	}
	if !r.SubtractAllowNegative(2) || r.Current != -2 {
		t.Fatalf("allow negative subtract current=%v, want -2", r.Current)
	}
}

func TestResourceSetMax(t *testing.T) {
	cases := []struct {
		name    string
		newMax  float64
		adjust  bool
		wantMax float64
		wantCur float64
	}{
		{"ignore non-positive", 0, false, 100, 50},
		{"clamp down", 40, false, 40, 40},
		{"grow keeps current", 200, false, 200, 50},
		{"grow keeps ratio", 200, true, 200, 100},
		{"shrink keeps ratio", 10, true, 10, 5},
	}
	for _, tc := range cases {
		r := NewResource("health", "Health", KindStat, 50, 100, 0)
		r.SetMax(tc.newMax, tc.adjust)
		if r.Max != tc.wantMax || r.Current != tc.wantCur {
			t.Errorf("%s: max=%v current=%v, want %v/%v", tc.name, r.Max, r.Current, tc.wantMax, tc.wantCur)
		}
	}
}

func TestResourceEffectiveGainRate(t *testing.T) {
	clock := NewManualClock(1_000)
	r := NewResource("health", "Health", KindStat, 0, 100, 2)
	r.SetClock(clock)

	r.AddModifier(Modifier{ID: "food", Operation: OpAdd, Value: 1})
	r.AddModifier(Modifier{ID: "potion", Operation: OpMultiply, Value: 2, ExpiresAt: 5_000})
	r.AddModifier(Modifier{ID: "bed", Operation: OpMultiply, Value: 1.5})
	if got := r.EffectiveGainRate(); got != (2+1)*2*1.5 {
		t.Fatalf("rate=%v, want 9", got)
	}

	// 同 ID 覆盖
	r.AddModifier(Modifier{ID: "food", Operation: OpAdd, Value: 3})
	if got := r.EffectiveGainRate(); got != (2+3)*2*1.5 {
		t.Fatalf("rate after replace=%v, want 15", got)
	}
	if n := len(r.Modifiers()); n != 3 {
		t.Fatalf("modifiers=%d, want 3", n)
	}

	clock.Set(5_000)
	if got := r.EffectiveGainRate(); got != (2+3)*1.5 {
		t.Fatalf("rate after expiry=%v, want 7.5", got)
	}
	if n := len(r.Modifiers()); n != 2 {
		t.Fatalf("expired modifier not purged, modifiers=%d", n)
	}

	if !r.RemoveModifier("bed") || r.RemoveModifier("bed") {
		t.Fatalf("remove should succeed once")
	}
}

func TestResourceUpdateStaysInBounds(t *testing.T) {
	regen := NewResource("health", "Health", KindStat, 95, 100, 10)
	if got := regen.Update(1000); got != 5 || regen.Current != 100 {
		t.Fatalf("regen delta=%v current=%v, want 5/100", got, regen.Current)
	}

	decay := NewResource("hunger", "Hunger", KindStat, 1, 100, -2)
	if got := decay.Update(1000); got != -1 || decay.Current != 0 {
		t.Fatalf("decay delta=%v current=%v, want -1/0", got, decay.Current)
	}
	if got := decay.Update(1000); got != 0 || decay.Current != 0 {
		t.Fatalf("decay at zero delta=%v current=%v", got, decay.Current)
	}

	r := NewResource("mana", "Mana", KindStat, 50, 60, 3)
	for i := 0; i < 50; i++ {
		switch i % 3 {
		case 0:
			r.Add(float64(i))
		case 1:
			r.Subtract(float64(i))
		default:
			r.Update(float64(i * 100))
		}
		if r.Current < 0 || r.Current > r.Max {
			t.Fatalf("step %d current=%v out of [0,%v]", i, r.Current, r.Max)
		}
	}
}

func TestResourceSerializeRoundTrip(t *testing.T) {
	clock := NewManualClock(0)
	r := NewResource("gold", "Gold", KindCurrency, 12.345, 1000, 0.25)
	r.SetClock(clock)
	r.LifetimeGained = 77.7
	r.AddModifier(Modifier{ID: "shop", Operation: OpMultiply, Value: 1.1, ExpiresAt: 90_000})
	r.AddModifier(Modifier{ID: "tax", Operation: OpAdd, Value: -0.05})

	restored := NewResource("gold", "Gold", KindCurrency, 0, 1, 0)
	restored.SetClock(clock)
	restored.Deserialize(r.Serialize())

	if restored.Current != r.Current || restored.Max != r.Max || restored.GainRate != r.GainRate ||
		restored.LifetimeGained != r.LifetimeGained || restored.Unlocked != r.Unlocked || restored.Visible != r.Visible {
		t.Fatalf("restored=%+v, want %+v", restored.Serialize(), r.Serialize())
	}
	if restored.EffectiveGainRate() != r.EffectiveGainRate() {
		t.Fatalf("gain rate %v != %v", restored.EffectiveGainRate(), r.EffectiveGainRate())
	}
}
