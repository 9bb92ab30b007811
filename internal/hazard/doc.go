// Package hazard scores hazard-mitigation planning coverage for U.S. places.
//
// # Data Source
//
// Plan records come from the FEMA Hazard Mitigation Plan Status table, one row
// per (state, place) plan filing. A place may appear multiple times as plans
// are renewed; only the most recently approved plan counts. Population figures
// are self-reported and frequently missing or zero, so a floor of 1000 is
// applied before any derived statistic.
//
// # Scoring
//
// Coverage scores are derived from population on a log scale:
//
//	log_population = ln(1 + population)
//	score          = ((log_population - min) / (max - min)) * 99 + 1
//
// which maps the dataset's log-population range onto [1, 100]. When every
// record shares one population value the range collapses and every score is
// declared 50.0. A percentile rank (average-rank tie handling) is computed
// alongside for reporting; resolution never reads it.
//
// # Resolution
//
// Queries resolve through a strict fallback chain: exact town match, then the
// population-weighted county aggregate, then the state aggregate, then a
// global score derived from the dataset median. Index misses drive the chain;
// they are not errors. The global level always produces a score, so every
// query resolves.
//
// All lookup structures live in an immutable Snapshot built once from the raw
// table. A Store publishes snapshots with an atomic pointer swap so readers
// always observe a fully built snapshot.
package hazard
