// Package sim provides the core discrete-event simulation engine for the
// multi-agent supply chain simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - message.go: the typed messages agents exchange (orders, acks, delay alerts)
//   - events.go: event types that drive the simulation (demand, delivery, review, shipment)
//   - simulator.go: the event loop, agent registry, and end-of-run metrics collection
//
// # Architecture
//
// The sim package holds the engine and the four agent roles; supporting
// concerns live in sub-packages:
//   - sim/scenario/: YAML scenario loading, demand generation, simulator construction
//   - sim/trace/: decision trace recording (pure data types)
//   - sim/results/: run archive sinks (memory, MySQL, Redis cache, AMQP feed)
//
// Time is an int64 tick counter where one tick is one hour. Events at the
// same tick execute in a fixed order (disruptions, then arrivals, then
// message deliveries, then demand, then reviews) with a per-simulator
// sequence number as the final tie-breaker, so a run is a pure function of
// its SimulationKey and scenario.
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Agent: one supply-chain role holding local stock and a decision policy
//   - OrderPolicy: order quantity from inventory position and forecast
//   - Forecaster: demand estimate from the observed per-period series
//   - ModeSelector: transport mode for a shipment given a deadline
package sim
