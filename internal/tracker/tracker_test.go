package tracker

import "testing"

func TestGlobOnBaseName(t *testing.T) {
	c := New([]string{"*.py"}, nil)
	if ok, rule := c.Tracked("strategy/trading_strategy.py"); !ok || rule != "glob:*.py" {
		t.Fatalf("expected base-name glob match, got %v %q", ok, rule)
	}
	if ok, _ := c.Tracked("notes/README.md"); ok {
		t.Fatal("md file must not match *.py")
	}
}

func TestGlobOnFullPath(t *testing.T) {
	c := New([]string{"config/*.yaml"}, nil)
	if ok, _ := c.Tracked("config/params.yaml"); !ok {
		t.Fatal("path glob should match")
	}
	if ok, _ := c.Tracked("other/params.yaml"); ok {
		t.Fatal("path glob must anchor to the directory")
	}
}

func TestKeywordMatchIsCaseInsensitive(t *testing.T) {
	c := New(nil, []string{"backtest"})
	if ok, rule := c.Tracked("tools/RunBacktest.sh"); !ok || rule != "keyword:backtest" {
		t.Fatalf("keyword match failed: %v %q", ok, rule)
	}
}

func TestFirstMatchWins(t *testing.T) {
	c := New([]string{"*.py"}, []string{"strategy"})
	_, rule := c.Tracked("strategy/alpha.py")
	if rule != "glob:*.py" {
		t.Fatalf("glob rules have priority, got %q", rule)
	}
}

func TestDefaultFallbackIsNotTracked(t *testing.T) {
	c := New(nil, nil)
	if ok, _ := c.Tracked("anything.txt"); ok {
		t.Fatal("empty rule table must track nothing")
	}
}
