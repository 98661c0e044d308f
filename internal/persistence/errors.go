package persistence

import "github.com/novaforge/cosmos-core/internal/gameerrors"

func errDeltaOutOfOrder(snapshotTick, deltaFromTick uint64) error {
	return gameerrors.Wrap(gameerrors.ErrVersionMismatch, "delta from_tick %d does not match snapshot tick %d", deltaFromTick, snapshotTick)
}

func checksumMismatch(want, got uint64) error {
	return gameerrors.Wrap(gameerrors.ErrChecksumMismatch, "checksum mismatch: stored %d, recomputed %d", want, got)
}
