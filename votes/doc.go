// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votes is the song vote ledger.

One record per (song, voter fingerprint). Submitting the same polarity twice
is a no-op, submitting the opposite polarity flips the record in place, and
records are never deleted. Aggregate counts are recomputed from storage on
every call so a vote is counted exactly once, everywhere, immediately.

The lookup-then-insert sequence in Submit is deliberately not wrapped in a
transaction; the unique index on (song_id, voter_fingerprint) arbitrates
races, and a rejected insert is converted into an update-or-ignore.
*/
package votes
