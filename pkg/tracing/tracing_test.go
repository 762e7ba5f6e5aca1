package tracing

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"coursepath/config"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.TraceConfig{Enabled: false}, zap.NewNop())
	if err != nil {
		t.Fatalf("Init 失败: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown 不应出错: %v", err)
	}
}

func TestInit_StdoutExporter(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.TraceConfig{
		Enabled:     true,
		ServiceName: "coursepath-test",
		SampleRatio: 1,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Init 失败: %v", err)
	}
	_, span := Tracer().Start(context.Background(), "test")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown 失败: %v", err)
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0.25: 0.25, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Errorf("clampRatio(%v) = %v, want %v", in, got, want)
		}
	}
}
