package hclpreset

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is used to decode the top-level blocks of any file.
type fileRoot struct {
	Presets []*presetBlock `hcl:"preset,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

type presetBlock struct {
	Name         string        `hcl:"name,label"`
	Extends      *string       `hcl:"extends,optional"`
	Base         *nodeBlock    `hcl:"base,block"`
	Init         *nodeBlock    `hcl:"init,block"`
	Train        *nodeBlock    `hcl:"train,block"`
	Eval         *nodeBlock    `hcl:"eval,block"`
	TrainDataset *datasetBlock `hcl:"train_dataset,block"`
	EvalDataset  *datasetBlock `hcl:"eval_dataset,block"`
	DeclRange    hcl.Range     `hcl:",def_range"`
}

type nodeBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type datasetBlock struct {
	MixinProb  *float64 `hcl:"mixin_prob,optional"`
	DatasetDir *string  `hcl:"dataset_dir,optional"`
	Body       hcl.Body `hcl:",remain"`
}
