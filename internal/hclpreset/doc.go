// Package hclpreset loads preset overrides from HCL files.
//
// A file declares one or more presets. Each preset names the catalogue
// preset it starts from and carries one block per config node:
//
//	preset "small" {
//	  extends = "supervised"
//
//	  base {
//	    batch_size = 16
//	  }
//	  train {
//	    log_every_steps = max(base.num_train_steps / 1000, 10)
//	  }
//	  train_dataset {
//	    mixin_prob  = 0.5
//	    dataset_dir = "/data/xc"
//	  }
//	}
//
// Attribute expressions may refer to other nodes as node.field. A bare
// traversal becomes a live reference; any other expression that mentions a
// traversal becomes a computed value evaluated against the resolved
// operands, so overrides made later still flow through it. The functions
// min, max, floor, ceil, abs and pow are available.
//
// The dataset blocks also accept mixin_prob and dataset_dir, which feed the
// pipeline composer rather than overriding a node field; they must be
// literals.
package hclpreset
