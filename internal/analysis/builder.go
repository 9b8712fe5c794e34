// Package analysis assembles the analysis test workflow: one pipelined task
// per catalog analysis plus the post-processing and QC upload tasks that
// follow them.
package analysis

import (
	"context"
	"strings"

	"github.com/maxkimambo/anaflow/internal/catalog"
	"github.com/maxkimambo/anaflow/internal/config"
	"github.com/maxkimambo/anaflow/internal/introspect"
	"github.com/maxkimambo/anaflow/internal/logger"
	"github.com/maxkimambo/anaflow/internal/workflow"
)

// DescriptorSource provides catalog descriptors
type DescriptorSource interface {
	Load(only []string, includeDisabled bool) ([]catalog.Descriptor, error)
}

// Options select what AddAnalysisTasks builds
type Options struct {
	InputFile string
	OutputDir string
	IsMC      bool
	// Only restricts the analyses to these names when non-empty.
	Only              []string
	IncludeDisabled   bool
	AutosetConverters bool
	// Timeout in seconds passed to every analysis, 0 for none.
	Timeout        int
	ConfigOverride string
	// Needs are tasks outside this workflow every analysis waits for.
	Needs []string
}

// Summary counts what a build added
type Summary struct {
	Input          string
	Analyses       int
	PostProcessing int
	Uploads        int
	Converter      bool
}

// Builder wires the catalog, the task factory and the injectors together
type Builder struct {
	source       DescriptorSource
	introspector introspect.Introspector
	factory      *TaskFactory
	post         *PostProcessingInjector
	qc           *QCUploadInjector
}

// NewBuilder creates a builder. introspector may be nil when converters are
// never requested.
func NewBuilder(cfg *config.Config, source DescriptorSource, introspector introspect.Introspector) *Builder {
	factory := NewTaskFactory(cfg)
	return &Builder{
		source:       source,
		introspector: introspector,
		factory:      factory,
		post:         NewPostProcessingInjector(source, factory, cfg.PostProcessingDir),
		qc:           NewQCUploadInjector(source, factory, cfg.QC),
	}
}

// AddAnalysisTasks appends one task per usable analysis followed by the
// post-processing tasks.
func (b *Builder) AddAnalysisTasks(ctx context.Context, wf *workflow.Workflow, opts Options) (Summary, error) {
	var summary Summary

	input, err := NormalizeInput(opts.InputFile)
	if err != nil {
		return summary, err
	}
	summary.Input = input

	outputDir, err := config.ExpandPath(opts.OutputDir)
	if err != nil {
		return summary, err
	}

	descriptors, err := b.source.Load(opts.Only, opts.IncludeDisabled)
	if err != nil {
		return summary, err
	}

	pb := PipelineBuilder{
		ConfigOverride:   opts.ConfigOverride,
		PrependConverter: opts.AutosetConverters && b.needsConverter(ctx, input),
	}
	summary.Converter = pb.PrependConverter

	variant := catalog.VariantFor(opts.IsMC)
	for _, d := range descriptors {
		pipeline, ok, err := pb.Build(d, variant, input, opts.Timeout)
		if err != nil {
			return summary, err
		}
		if !ok {
			continue
		}
		task := b.factory.Create(d.Name, pipeline.Command(), outputDir, opts.Needs, opts.IsMC)
		if err := wf.Append(task); err != nil {
			return summary, err
		}
		logger.User.Addedf("Analysis %s", d.Name)
		summary.Analyses++
	}

	summary.PostProcessing, err = b.post.Run(wf, workflow.BuildIndex(wf))
	return summary, err
}

// AddQCUploadTasks appends the upload tasks for the analyses in wf
func (b *Builder) AddQCUploadTasks(wf *workflow.Workflow, params QCParams) (int, error) {
	return b.qc.Run(wf, workflow.BuildIndex(wf), params)
}

// needsConverter asks the introspector whether a local ROOT input still has
// the legacy collision table. Failures leave the input untouched.
func (b *Builder) needsConverter(ctx context.Context, input string) bool {
	if b.introspector == nil || isRemote(input) || !strings.HasSuffix(input, ".root") {
		return false
	}
	legacy, err := b.introspector.HasLegacyCollisions(ctx, input)
	if err != nil {
		logger.User.Warnf("Could not inspect %s, no converter added: %v", input, err)
		return false
	}
	if legacy {
		logger.User.Infof("%s has no O2collision_001 table, adding %s", input, CollisionConverter)
	}
	return legacy
}
