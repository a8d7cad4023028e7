// Package tourney holds the tournament domain: users and their osu! server
// accounts, teams and memberships, map pools, stages, and scores.
//
// # Overview
//
// A pool is a reusable list of beatmaps, each slot carrying a CEL condition
// a score must pass. When a team enters a stage, the pool's slots are copied
// onto the stage, freezing them against later pool edits. Scores are
// submitted against a stage map, gated by the slot's condition, and credited
// with performance points by the stage's pinned formula.
//
// All entities persist as JSON rows in Pebble under the tn/ keyspace with
// creation-ordered ids, so prefix scans double as chronological listings.
package tourney
