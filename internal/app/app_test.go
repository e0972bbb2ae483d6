package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ronsuru/taskquer/internal/config"
	"github.com/ronsuru/taskquer/pkg/events"
)

type ApplicationSuite struct {
	suite.Suite
	app *Application
}

func TestApplication(t *testing.T) {
	suite.Run(t, &ApplicationSuite{})
}

func (s *ApplicationSuite) SetupTest() {
	s.app = New()
}

func (s *ApplicationSuite) TestWait() {
	ctx, cancel := context.WithCancel(context.Background())

	s.app.errCh = make(chan error)
	go func() {
		s.app.errCh <- fmt.Errorf("mock error")
	}()

	err := s.app.Wait(ctx, cancel)

	s.Require().Error(err)
	s.Contains(err.Error(), "mock error")
}

func (s *ApplicationSuite) TestWaitReleasesResourcesInReverseOrder() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var order []string
	s.app.closers = []func(){
		func() { order = append(order, "db") },
		func() { order = append(order, "redis") },
	}
	s.app.events = events.NewAsync(events.Nop{}, 1)

	s.Require().NoError(s.app.Wait(ctx, cancel))
	s.Equal([]string{"redis", "db"}, order)
}

func (s *ApplicationSuite) TestPublishersSkipUnconfiguredSinks() {
	publisher := s.app.publishers(&config.Config{NotifyTelegram: true})

	sinks, ok := publisher.(events.Multi)
	s.Require().True(ok)
	s.Empty(sinks)
	s.Empty(s.app.closers)
}

func (s *ApplicationSuite) TestEventsAcceptPublishAfterWait() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.app.events = events.NewAsync(events.Nop{}, 1)

	s.Require().NoError(s.app.Wait(ctx, cancel))
	s.NotPanics(func() {
		s.app.events.Publish(context.Background(), events.Event{Type: events.WithdrawalFailed})
	})
}

func (s *ApplicationSuite) TestDrainTimeoutCoversChainCalls() {
	s.Equal(shutdownTimeout, s.app.drainTimeout())

	s.app.cfg = &config.Config{ChainTimeout: 30 * time.Second}
	s.Equal(shutdownTimeout+30*time.Second, s.app.drainTimeout())
}
