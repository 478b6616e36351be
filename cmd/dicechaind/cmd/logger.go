package cmd

import (
	"cosmossdk.io/log"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// cmtLogger lets the ABCI server log through the node logger.
type cmtLogger struct {
	log.Logger
}

func (l cmtLogger) With(keyvals ...any) cmtlog.Logger {
	return cmtLogger{l.Logger.With(keyvals...)}
}
