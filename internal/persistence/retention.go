package persistence

import (
	"context"
	"time"
)

// DefaultMaxSnapshotsPerPlayer and DefaultMaxDeltasPerPlayer are spec.md
// §4.7's retention defaults.
const (
	DefaultMaxSnapshotsPerPlayer = 10
	DefaultMaxDeltasPerPlayer    = 100
	DefaultRetentionAgeDays      = 30
)

// RunRetention removes duplicate snapshots (same player_id, tick) keeping
// the newest by timestamp, keeps playerID's newest maxSnapshots snapshots
// by tick regardless of age, deletes deltas older than ageDays and then
// caps the remaining deltas at the newest maxDeltas by to_tick —
// spec.md §4.7's maintenance pass.
func (s *Store) RunRetention(ctx context.Context, playerID string, maxSnapshots, maxDeltas, ageDays int, now time.Time) error {
	if err := s.dedupeSnapshots(ctx, playerID); err != nil {
		return err
	}

	cutoff := now.AddDate(0, 0, -ageDays).Unix()

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE player_id = ? AND timestamp < ? AND tick NOT IN (
			SELECT tick FROM snapshots WHERE player_id = ? ORDER BY tick DESC LIMIT ?
		)`, playerID, cutoff, playerID, maxSnapshots); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE player_id = ? AND tick NOT IN (
			SELECT tick FROM snapshots WHERE player_id = ? ORDER BY tick DESC LIMIT ?
		)`, playerID, playerID, maxSnapshots); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM deltas WHERE player_id = ? AND timestamp < ?`, playerID, cutoff); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM deltas WHERE player_id = ? AND rowid NOT IN (
			SELECT rowid FROM deltas WHERE player_id = ? ORDER BY to_tick DESC LIMIT ?
		)`, playerID, playerID, maxDeltas)
	return err
}

// dedupeSnapshots removes duplicate (player_id, tick) rows, which the
// PRIMARY KEY constraint prevents going forward but which legacy or
// migrated data might still carry, keeping the row with the newest
// timestamp.
func (s *Store) dedupeSnapshots(ctx context.Context, playerID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE player_id = ? AND EXISTS (
			SELECT 1 FROM snapshots newer
			WHERE newer.player_id = snapshots.player_id AND newer.tick = snapshots.tick
			  AND (newer.timestamp > snapshots.timestamp
			       OR (newer.timestamp = snapshots.timestamp AND newer.rowid > snapshots.rowid))
		)`, playerID)
	return err
}

// IntegrityReport summarizes what an integrity pass found and fixed.
type IntegrityReport struct {
	ZeroChecksums    int
	OrphanedDeltas   int
	DuplicatesPruned int
}

// VerifyIntegrity scans for zero/null checksums, deltas with no
// corresponding base snapshot (orphaned), and duplicate snapshots,
// reconciling by deletion (spec.md §4.7's schema-migration integrity
// verification).
func (s *Store) VerifyIntegrity(ctx context.Context, playerID string) (IntegrityReport, error) {
	var report IntegrityReport

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE player_id = ? AND (checksum IS NULL OR checksum = 0)`, playerID)
	if err := row.Scan(&report.ZeroChecksums); err != nil {
		return report, err
	}
	if report.ZeroChecksums > 0 {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE player_id = ? AND (checksum IS NULL OR checksum = 0)`, playerID); err != nil {
			return report, err
		}
	}

	row = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM deltas d
		WHERE d.player_id = ? AND NOT EXISTS (
			SELECT 1 FROM snapshots sn WHERE sn.player_id = d.player_id AND sn.tick <= d.from_tick
		)`, playerID)
	if err := row.Scan(&report.OrphanedDeltas); err != nil {
		return report, err
	}
	if report.OrphanedDeltas > 0 {
		if _, err := s.db.ExecContext(ctx, `
			DELETE FROM deltas WHERE player_id = ? AND NOT EXISTS (
				SELECT 1 FROM snapshots sn WHERE sn.player_id = deltas.player_id AND sn.tick <= deltas.from_tick
			)`, playerID); err != nil {
			return report, err
		}
	}

	before := 0
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE player_id = ?`, playerID)
	if err := row.Scan(&before); err != nil {
		return report, err
	}
	if err := s.dedupeSnapshots(ctx, playerID); err != nil {
		return report, err
	}
	after := 0
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE player_id = ?`, playerID)
	if err := row.Scan(&after); err != nil {
		return report, err
	}
	report.DuplicatesPruned = before - after

	return report, nil
}
