// Package tourneysvc implements the tournament service: account
// registration and login, team rosters, map pools, stages, and score
// submission with condition checking and formula grading.
package tourneysvc
