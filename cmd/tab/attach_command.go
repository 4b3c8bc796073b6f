package main

import (
	"os"

	"github.com/spf13/cobra"

	"tab/internal/client"
	"tab/internal/logging"
)

func runAttach(cmd *cobra.Command, ctx *commandContext, tabName string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if tabName == "" {
		tabName = cfg.Client.DefaultTab
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	runCtx := ctx.commandCtx(cmd)
	conn, err := ctx.connect(runCtx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); ok {
		restore, err := client.MakeRaw(file)
		if err != nil {
			logger.Warn("terminal raw mode unavailable", logging.Error(err))
		}
		defer func() {
			if err := restore(); err != nil {
				logger.Warn("restore terminal mode", logging.Error(err))
			}
		}()
	}

	return client.Attach(runCtx, conn, client.Options{
		Credential: cfg.CredentialBytes(),
		TabName:    tabName,
		BufferSize: cfg.Client.StdinBufferSize,
		Stdin:      stdin,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
		Logger:     logger,
	})
}
