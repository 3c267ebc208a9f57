package preset

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Params are the base parameters every derived config refers to.
type Params struct {
	SampleRateHz       int     `cfg:"sample_rate_hz" validate:"gt=0"`
	TrainWindowSizeS   float64 `cfg:"train_window_size_s" validate:"gt=0"`
	EvalWindowSizeS    float64 `cfg:"eval_window_size_s" validate:"gt=0"`
	FrameRateHz        int     `cfg:"frame_rate_hz" validate:"gt=0"`
	NumChannels        int     `cfg:"num_channels" validate:"gt=0"`
	BatchSize          int     `cfg:"batch_size" validate:"gt=0"`
	AddTaxonomicLabels bool    `cfg:"add_taxonomic_labels"`
	TargetClassList    string  `cfg:"target_class_list" validate:"required"`
	NumTrainSteps      int     `cfg:"num_train_steps" validate:"gt=0"`
	PadMask            bool    `cfg:"pad_mask"`
	TFDSDataDir        string  `cfg:"tfds_data_dir"`
}

// BaseDefaults returns the default base parameters.
func BaseDefaults() Params {
	return Params{
		SampleRateHz:       32000,
		TrainWindowSizeS:   5,
		EvalWindowSizeS:    5,
		FrameRateHz:        100,
		NumChannels:        160,
		BatchSize:          64,
		AddTaxonomicLabels: true,
		TargetClassList:    "xenocanto",
		NumTrainSteps:      1_000_000,
		PadMask:            false,
		TFDSDataDir:        "",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report base field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("cfg"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(Params)
		if p.SampleRateHz > 0 && p.FrameRateHz > 0 && p.SampleRateHz%p.FrameRateHz != 0 {
			sl.ReportError(p.FrameRateHz, "frame_rate_hz", "FrameRateHz", "divides_sample_rate", "")
		}
	}, Params{})
	return v
}

// Validate checks the parameters. Each failing field becomes a
// cfgerr.ConfigurationError; several are joined.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, cfgerr.Invalid(fe.Field(), "%s", detailMessageByTag(fe)))
	}
	return errors.Join(out...)
}

func detailMessageByTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "required":
		return "is required"
	case "divides_sample_rate":
		return fmt.Sprintf("%v Hz does not evenly divide the sample rate", fe.Value())
	}
	return fe.Error()
}

// Fields returns the parameters as base node fields, in declaration order.
func (p Params) Fields() []refgraph.Field {
	return []refgraph.Field{
		refgraph.F("sample_rate_hz", refgraph.Int(int64(p.SampleRateHz))),
		refgraph.F("train_window_size_s", refgraph.Float(p.TrainWindowSizeS)),
		refgraph.F("eval_window_size_s", refgraph.Float(p.EvalWindowSizeS)),
		refgraph.F("frame_rate_hz", refgraph.Int(int64(p.FrameRateHz))),
		refgraph.F("num_channels", refgraph.Int(int64(p.NumChannels))),
		refgraph.F("batch_size", refgraph.Int(int64(p.BatchSize))),
		refgraph.F("add_taxonomic_labels", refgraph.Bool(p.AddTaxonomicLabels)),
		refgraph.F("target_class_list", refgraph.Str(p.TargetClassList)),
		refgraph.F("num_train_steps", refgraph.Int(int64(p.NumTrainSteps))),
		refgraph.F("pad_mask", refgraph.Bool(p.PadMask)),
		refgraph.F("tfds_data_dir", refgraph.Str(p.TFDSDataDir)),
	}
}

// ParamsFrom reads the parameters back from a resolved base node, so values
// overridden after Build can be validated. Fields the node lacks keep their
// zero value; extra fields are ignored.
func ParamsFrom(res *refgraph.Resolved) (Params, error) {
	var p Params
	dst := reflect.ValueOf(&p).Elem()
	for i := 0; i < dst.NumField(); i++ {
		name := dst.Type().Field(i).Tag.Get("cfg")
		r, ok := res.Get(name)
		if !ok {
			continue
		}
		d, ok := r.(refgraph.Data)
		if !ok {
			return Params{}, cfgerr.Invalid(name, "must be plain data, not a call")
		}
		if err := gocty.FromCtyValue(d.Val, dst.Field(i).Addr().Interface()); err != nil {
			return Params{}, cfgerr.Invalid(name, "%s", err)
		}
	}
	return p, nil
}
