package compiler

import "github.com/rxtech-lab/argo-strategy-builder/internal/types"

var baselineImports = []string{
	"import numpy as np",
	"import pandas as pd",
	"from pandas import DataFrame",
	"from freqtrade.strategy import IStrategy",
	"import talib.abstract as ta",
	"import freqtrade.vendor.qtpylib.indicators as qtpylib",
}

const hyperoptImport = "from freqtrade.strategy import CategoricalParameter, DecimalParameter, IntParameter"

func generateImports(a *Analysis) []Line {
	lines := make([]Line, 0, len(baselineImports)+1)
	for _, text := range baselineImports {
		lines = append(lines, statement("%s", text))
	}

	if a.Count(types.CategoryHyperoptParam) > 0 {
		lines = append(lines, statement("%s", hyperoptImport))
	}

	return lines
}
