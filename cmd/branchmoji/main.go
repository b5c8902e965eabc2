package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Siddarth2230/branchmoji/internal/cli"
)

func main() {
	logAtomic := zap.NewAtomicLevel()
	logCfg := zap.NewProductionConfig()
	logCfg.Level = logAtomic
	logCfg.Encoding = "console"
	logCfg.DisableStacktrace = true
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	undo := zap.ReplaceGlobals(logger)
	defer undo()

	c := cli.CLI{}
	parser, err := cli.Parser(&c)
	if err != nil {
		logger.Fatal("build parser", zap.Error(err))
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	var ll zapcore.Level
	if err := ll.Set(c.Globals.LogLevel); err != nil {
		logger.Fatal("log level", zap.String("level", c.Globals.LogLevel), zap.Error(err))
	}
	logAtomic.SetLevel(ll)
	if err := ctx.Run(&c.Globals); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}
