package pager

import (
	"bytes"
	"testing"
)

func TestRenderRowAwaitsKeyAtPageBoundary(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, nil, 3)
	if a := p.RenderRow("row1"); a != Continue {
		t.Fatalf("expected Continue, got %v", a)
	}
	if a := p.RenderRow("row2"); a != Continue {
		t.Fatalf("expected Continue, got %v", a)
	}
	if a := p.RenderRow("row3"); a != AwaitKey {
		t.Fatalf("expected AwaitKey at page boundary, got %v", a)
	}
}

func TestResetAllowsAnotherFullPage(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, nil, 2)
	p.RenderRow("a")
	p.RenderRow("b") // AwaitKey
	p.Reset()
	if a := p.RenderRow("c"); a != Continue {
		t.Fatalf("expected Continue after reset, got %v", a)
	}
}

func TestDisabledPagerNeverAwaitsKey(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, nil, 1)
	p.disabled = true
	for i := 0; i < 10; i++ {
		if a := p.RenderRow("row"); a != Continue {
			t.Fatalf("expected disabled pager to always Continue, got %v", a)
		}
	}
}
