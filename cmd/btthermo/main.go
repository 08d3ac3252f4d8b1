package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fako1024/btthermo"
	"golang.org/x/sync/errgroup"
)

const powerOnTimeout = 30 * time.Second

func main() {

	logger := btthermo.NewDefaultLogger(false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader, err := btthermo.NewSPIReader()
	if err != nil {
		logger.Fatalf("failed to initialize thermocouple reader: %s", err)
	}
	defer reader.Close()

	initCtx, cancel := context.WithTimeout(ctx, powerOnTimeout)
	radio, err := btthermo.NewGattRadio(initCtx, btthermo.WithRadioLogger(logger))
	cancel()
	if err != nil {
		logger.Fatalf("failed to initialize bluetooth device: %s", err)
	}

	p, err := btthermo.NewPeripheral(radio, btthermo.WithPeripheralLogger(logger))
	if err != nil {
		logger.Fatalf("failed to start peripheral: %s", err)
	}

	stateChan := make(chan btthermo.ConnectionStatus, 8)
	p.SetStateChangeChannel(stateChan)

	loop := btthermo.NewLoop(reader, p, btthermo.WithLoopLogger(logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case st := <-stateChan:
				logger.Debugf("state change: %s (%d connection(s), advertising: %v)", st.State, st.Connections, st.Advertising)
			case <-gctx.Done():
				logger.Infof("got signal, shutting down peripheral")
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("sampling loop terminated: %s", err)
	}

	if err := p.Close(); err != nil {
		logger.Errorf("failed to close peripheral: %s", err)
	}
}
