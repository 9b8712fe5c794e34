package analysis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maxkimambo/anaflow/internal/config"
	apperrors "github.com/maxkimambo/anaflow/internal/errors"
	"github.com/maxkimambo/anaflow/internal/logger"
	"github.com/maxkimambo/anaflow/internal/workflow"
)

const (
	provenanceData = "qc"
	provenanceMC   = "qc_mc"
)

// QCParams identify the uploaded objects in the QC database
type QCParams struct {
	PeriodName string
	PassName   string
	RunNumber  int
}

// Validate fails when the period or pass name is missing
func (p QCParams) Validate() error {
	if strings.TrimSpace(p.PeriodName) == "" || strings.TrimSpace(p.PassName) == "" {
		return apperrors.NewQCPreconditionError(p.PeriodName, p.PassName)
	}
	return nil
}

// QCUploadInjector adds one upload task per expected output of every
// analysis present in the workflow.
type QCUploadInjector struct {
	source  DescriptorSource
	factory *TaskFactory
	qc      config.QCConfig
}

// NewQCUploadInjector creates an injector using the upload tool described by qc
func NewQCUploadInjector(source DescriptorSource, factory *TaskFactory, qc config.QCConfig) *QCUploadInjector {
	return &QCUploadInjector{
		source:  source,
		factory: factory,
		qc:      qc,
	}
}

// Run appends the upload tasks and returns how many were added
func (q *QCUploadInjector) Run(wf *workflow.Workflow, idx workflow.Index, params QCParams) (int, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	descriptors, err := q.source.Load(nil, true)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, d := range descriptors {
		if len(d.ExpectedOutput) == 0 {
			continue
		}
		ana, ok := idx.Lookup(d.Name)
		if !ok {
			continue
		}
		provenance := provenanceData
		if ana.HasLabel(workflow.LabelAnalysisMC) {
			provenance = provenanceMC
		}

		for _, eo := range d.ExpectedOutput {
			renamed := RenamedOutput(eo, d.Name)
			task := q.factory.CreateFollowUp(
				fmt.Sprintf("%s_finalize_%s_%s", workflow.LabelAnalysis, d.Name, renamed),
				q.uploadCommand(eo, renamed, d.Name, provenance, params),
				ana.Cwd,
				[]string{workflow.LabelUpload, d.Name},
				[]string{ana.Name},
			)
			if err := wf.Append(task); err != nil {
				return added, err
			}
			added++
		}
		logger.User.Addedf("QC upload for %s (%d file(s))", d.Name, len(d.ExpectedOutput))
	}
	return added, nil
}

// uploadCommand renames the output for the upload and always renames it
// back once the first rename succeeded, keeping the upload's exit status.
func (q *QCUploadInjector) uploadCommand(eo, renamed, raw, provenance string, params QCParams) string {
	upload := fmt.Sprintf("%s --input-file ./%s --qcdb-url %s --task-name %s%s --detector-code %s --provenance %s --pass-name %s --period-name %s --run-number %d",
		q.qc.UploadCommand, renamed, q.qc.URL, workflow.LabelAnalysis, raw, q.qc.DetectorCode,
		provenance, params.PassName, params.PeriodName, params.RunNumber)
	return fmt.Sprintf("mv %s %s && { %s; rc=$?; mv %s %s; exit $rc; }", eo, renamed, upload, renamed, eo)
}

// RenamedOutput inserts _<raw> before the extension of eo
func RenamedOutput(eo, raw string) string {
	ext := filepath.Ext(eo)
	return strings.TrimSuffix(eo, ext) + "_" + raw + ext
}
