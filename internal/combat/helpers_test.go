package combat_test

import "github.com/blamedcloud/dndstats/internal/rv"

func rvInt(v int) rv.Int { return rv.Int(v) }

func constantRV(v int) *rv.VecRV { return rv.Constant(v) }
