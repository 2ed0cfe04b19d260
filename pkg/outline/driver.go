package outline

import (
	"shapeline/internal/logging"
	"shapeline/pkg/config"
	"shapeline/pkg/ir"
	"shapeline/pkg/suffixtree"
	"shapeline/pkg/telemetry"

	"go.uber.org/zap"
)

// RunOnModule runs the outliner to a fixed point (or settings.MaxRounds,
// whichever comes first), re-linearizing module at the start of every
// round so a round's newly created OUTLINED_FUNCTION bodies become
// available as outlining material for the next round (spec.md §4.10).
func RunOnModule(b ir.Builder, module *ir.Module, settings config.OutliningSettings) (telemetry.Stats, error) {
	logger, err := logging.New("outline")
	if err != nil {
		return telemetry.Stats{}, err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", logging.NewRunID()), zap.String("module", module.Name))

	var stats telemetry.Stats
	for round := 0; round < settings.MaxRounds; round++ {
		stats.NumOutliningRounds++

		stream, insts := Linearize(module, settings.MinLength)
		target := NewModuleOutlinerTarget(insts, settings)
		functions := suffixtree.GetFunctionsToOutline(stream, target)

		outlinedThisRound := 0
		for i := range functions {
			fn := &functions[i]
			if fn.Benefit() < 1 {
				continue
			}

			escapeOffset, hasEscape := findEscape(insts, fn)

			var newFn *ir.Function
			numOutlined := 0
			for c := range fn.Candidates {
				cand := &fn.Candidates[c]
				if cand.Deleted {
					continue
				}
				if newFn == nil {
					built, buildErr := buildOutlinedFunction(b, module, insts, fn, settings)
					if buildErr != nil {
						logger.Warn("failed to build outlined function", zap.Error(buildErr))
						break
					}
					newFn = built
				}
				ok, rewriteErr := outlineCandidate(b, module, insts, *cand, newFn, escapeOffset, hasEscape)
				if rewriteErr != nil {
					logger.Warn("failed to outline candidate", zap.Error(rewriteErr))
					cand.Deleted = true
					continue
				}
				if !ok {
					cand.Deleted = true
					continue
				}
				numOutlined++
			}

			if numOutlined >= 2 {
				stats.RecordFunction(numOutlined, fn.SequenceSize)
				outlinedThisRound += numOutlined
			}
		}

		logger.Info("outlining round complete",
			zap.Int("round", round),
			zap.Int("candidates_outlined", outlinedThisRound),
		)
		if outlinedThisRound == 0 {
			break
		}
	}

	logger.Info("outlining finished", zap.String("summary", stats.Summary()))
	return stats, nil
}
