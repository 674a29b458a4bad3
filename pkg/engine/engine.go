/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package engine wires the classifier, state machine, collector, rule
// evaluator and alert service into one running monitor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/carverauto/pulse/pkg/activity"
	"github.com/carverauto/pulse/pkg/alerts"
	"github.com/carverauto/pulse/pkg/alerts/channels"
	"github.com/carverauto/pulse/pkg/db"
	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/metrics"
	"github.com/carverauto/pulse/pkg/metrics/sources"
	"github.com/carverauto/pulse/pkg/models"
	"github.com/carverauto/pulse/pkg/rules"
	"github.com/carverauto/pulse/pkg/state"
)

// Engine owns every component and the background loops driving them.
type Engine struct {
	cfg        *Config
	monitoring models.MonitoringConfig
	store      kv.Store
	now        func() time.Time

	machine      *state.Machine
	classifier   *activity.Classifier
	collector    *metrics.Collector
	subscriber   *metrics.Subscriber
	ruleStore    *rules.SQLiteStore
	evaluator    *rules.Evaluator
	processor    *rules.Processor
	dispatcher   *alerts.Dispatcher
	alertService *alerts.Service
	cleanup      *alerts.CleanupService
	snmp         []*sources.SNMPSource

	kick chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

type options struct {
	now      func() time.Time
	handlers []alerts.ChannelHandler
	sources  []metrics.Source
	custom   bool
}

// Option customizes New.
type Option func(*options)

// WithClock replaces time.Now in every component.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithHandlers registers handlers instead of the ones built from the
// channel configuration.
func WithHandlers(handlers ...alerts.ChannelHandler) Option {
	return func(o *options) {
		o.handlers = handlers
		o.custom = true
	}
}

// WithSource registers an additional metric source.
func WithSource(src metrics.Source) Option {
	return func(o *options) {
		o.sources = append(o.sources, src)
	}
}

// New builds the engine over store and database. Nothing runs until Start.
func New(cfg *Config, store kv.Store, database *db.DB, opts ...Option) (*Engine, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mc := cfg.Monitoring.Model()

	e := &Engine{
		cfg:        cfg,
		monitoring: mc,
		store:      store,
		now:        o.now,
		kick:       make(chan struct{}, 1),
	}

	e.machine = state.NewMachine(store, mc, state.WithClock(o.now))
	e.classifier = activity.NewClassifier(store, mc, activity.WithClock(o.now))
	e.collector = metrics.NewCollector(store, mc, metrics.WithCollectorClock(o.now))
	e.subscriber = metrics.NewSubscriber(store, mc, metrics.WithSubscriberClock(o.now))

	e.ruleStore = rules.NewSQLiteStore(database)
	e.evaluator = rules.NewEvaluator(store, e.ruleStore, mc, rules.WithClock(o.now))

	dispatcherOpts := []alerts.DispatcherOption{alerts.WithDispatcherClock(o.now)}
	if cfg.NotifyRate > 0 {
		dispatcherOpts = append(dispatcherOpts, alerts.WithRateLimit(rate.Limit(cfg.NotifyRate), cfg.NotifyBurst))
	}

	if len(cfg.DefaultChannels) > 0 {
		dispatcherOpts = append(dispatcherOpts, alerts.WithDefaultChannels(cfg.DefaultChannels...))
	}

	e.dispatcher = alerts.NewDispatcher(dispatcherOpts...)

	handlers := o.handlers
	if !o.custom {
		var err error

		handlers, err = channels.Build(cfg.Channels, store)
		if err != nil {
			return nil, fmt.Errorf("failed to build notification channels: %w", err)
		}
	}

	for _, h := range handlers {
		e.dispatcher.RegisterHandler(h)
	}

	e.alertService = alerts.NewService(alerts.NewSQLiteStore(database), e.machine, mc,
		alerts.WithClock(o.now), alerts.WithNotifier(e.dispatcher))
	e.processor = rules.NewProcessor(e.evaluator, e.alertService)
	e.cleanup = alerts.NewCleanupService(e.alertService, cfg.Cleanup)

	if err := e.registerSources(database, o.sources); err != nil {
		return nil, err
	}

	e.subscriber.AddCallback(e.evaluator.HandleUpdate)

	return e, nil
}

func (e *Engine) registerSources(database *db.DB, extra []metrics.Source) error {
	if !e.cfg.Sources.DisableRuntime {
		e.collector.RegisterSource(sources.NewRuntimeSource(false))
	}

	if !e.cfg.Sources.DisableDatabase && database != nil {
		e.collector.RegisterSource(sources.NewDatabaseSource("db", database))
	}

	for _, sc := range e.cfg.Sources.SNMP {
		src, err := sources.NewSNMPSource(sc)
		if err != nil {
			return err
		}

		e.snmp = append(e.snmp, src)
		e.collector.RegisterSource(src)
	}

	for _, src := range extra {
		e.collector.RegisterSource(src)
	}

	return nil
}

// Start seeds the state, imports the rules file and starts the subscriber,
// driver and maintenance loops.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return ErrAlreadyStarted
	}

	if err := e.machine.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize monitoring state: %w", err)
	}

	if e.cfg.RulesFile != "" {
		if err := e.importRules(ctx, e.cfg.RulesFile); err != nil {
			return err
		}
	}

	if err := e.subscriber.Start(ctx); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true

	e.wg.Add(2)

	go e.run(loopCtx)
	go e.maintain(loopCtx)

	current, err := e.machine.Current(ctx)
	if err != nil {
		log.Printf("Error reading monitoring state: %v", err)
	}

	log.Printf("Engine started in %s state", current)

	return nil
}

func (e *Engine) importRules(ctx context.Context, path string) error {
	loaded, err := rules.LoadRuleFile(path)
	if err != nil {
		return fmt.Errorf("failed to load rules file: %w", err)
	}

	created, updated, err := rules.Import(ctx, e.ruleStore, loaded)
	if err != nil {
		return fmt.Errorf("failed to import rules: %w", err)
	}

	e.evaluator.Invalidate()

	log.Printf("Imported rules from %s: %d created, %d updated", path, created, updated)

	return nil
}

// Stop ends the loops, waiting at most until ctx is done, and releases the
// subscriber and SNMP sockets.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}

	e.cancel()
	e.running = false

	done := make(chan struct{})

	go func() {
		e.wg.Wait()
		close(done)
	}()

	var errs []error

	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("engine loops did not stop: %w", ctx.Err()))
	}

	if err := e.subscriber.Stop(); err != nil {
		errs = append(errs, err)
	}

	for _, src := range e.snmp {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	log.Printf("Engine stopped")

	return errors.Join(errs...)
}

// Kick makes the driver loop run its next tick immediately.
func (e *Engine) Kick() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

func (e *Engine) Machine() state.StateMachine { return e.machine }

func (e *Engine) Classifier() activity.RequestClassifier { return e.classifier }

func (e *Engine) Collector() metrics.MetricCollector { return e.collector }

func (e *Engine) Rules() rules.RuleStore { return e.ruleStore }

// InvalidateRules drops the evaluator's rule cache after an edit.
func (e *Engine) InvalidateRules() { e.evaluator.Invalidate() }

func (e *Engine) Alerts() alerts.AlertService { return e.alertService }

func (e *Engine) Store() kv.Store { return e.store }

// Healthy reports whether the metric subscriber is receiving updates.
func (e *Engine) Healthy() bool { return e.subscriber.Healthy() }

func (e *Engine) SubscriberStats() metrics.SubscriberStats { return e.subscriber.Stats() }
