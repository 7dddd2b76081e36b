package ctxutil

import (
	"context"
	"testing"
)

func TestShopData(t *testing.T) {
	ctx := context.Background()
	if Shop(ctx) != "" {
		t.Fatalf("expected empty shop on bare context")
	}
	ctx = WithShopData(ctx, &ShopData{Shop: "demo.myshopify.com", SessionID: "s1"})
	if got := Shop(ctx); got != "demo.myshopify.com" {
		t.Fatalf("Shop: want=demo.myshopify.com got=%s", got)
	}
	if sd := GetShopData(ctx); sd == nil || sd.SessionID != "s1" {
		t.Fatalf("GetShopData: got=%+v", sd)
	}
}

func TestTraceData(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t", RequestID: "r"})
	td := GetTraceData(ctx)
	if td == nil || td.TraceID != "t" || td.RequestID != "r" {
		t.Fatalf("GetTraceData: got=%+v", td)
	}
	if GetTraceData(context.Background()) != nil {
		t.Fatalf("expected nil trace data")
	}
}
