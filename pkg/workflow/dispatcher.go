package workflow

import (
	"context"
	"encoding/json"

	"market-sim-orchestrator/internal/pkg/logger"
	"market-sim-orchestrator/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Dispatcher consumes navigation and stage events from the in-process bus and
// drives the resolver, notifier and guidance trigger. One resolver evaluation
// per navigation event; both downstream components see the same resolution.
type Dispatcher struct {
	bus      *events.Bus
	resolver *StageResolver
	notifier *WorkflowNotifier
	guidance *GuidanceTrigger
	log      logger.ILogger
}

func NewDispatcher(
	bus *events.Bus,
	resolver *StageResolver,
	notifier *WorkflowNotifier,
	guidance *GuidanceTrigger,
	log logger.ILogger,
) *Dispatcher {
	return &Dispatcher{
		bus:      bus,
		resolver: resolver,
		notifier: notifier,
		guidance: guidance,
		log:      log,
	}
}

// Run subscribes to both topics and processes events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	navMessages, err := d.bus.Subscribe(ctx, events.TopicNavigation)
	if err != nil {
		return err
	}
	stageMessages, err := d.bus.Subscribe(ctx, events.TopicStage)
	if err != nil {
		return err
	}

	go func() {
		for msg := range navMessages {
			d.processNavigation(ctx, msg)
		}
	}()
	go func() {
		for msg := range stageMessages {
			d.processStage(ctx, msg)
		}
	}()

	return nil
}

func (d *Dispatcher) processNavigation(ctx context.Context, msg *message.Message) {
	var ev events.NavigationEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		d.log.Error("workflow-dispatcher", "failed to unmarshal navigation event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads never become valid on redelivery
		return
	}

	d.HandleNavigation(ctx, ev)
	msg.Ack()
}

func (d *Dispatcher) processStage(ctx context.Context, msg *message.Message) {
	var ev events.StageEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		d.log.Error("workflow-dispatcher", "failed to unmarshal stage event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	d.notifier.NotifyStageEvent(ctx, OrgContext{Id: ev.OrgId}, ev.Stage)
	msg.Ack()
}

// HandleNavigation resolves one navigation event and fans the resolution out.
// Exposed so hosts that do not use the bus can call it directly.
func (d *Dispatcher) HandleNavigation(ctx context.Context, ev events.NavigationEvent) {
	res := d.resolver.Resolve(ev.Path)
	org := OrgContext{Id: ev.OrgId}
	d.notifier.Notify(ctx, org, ev.Path, res)
	d.guidance.Observe(ctx, res.Stage, org)
}
