package main

import (
	"context"
	"earningsdump/cmd/earningsdump/commands"
	"earningsdump/internal/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}
