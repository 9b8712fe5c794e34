package workflow

// Label values shared by all generated tasks.
const (
	// LabelAnalysis marks every task this generator emits for an analysis.
	LabelAnalysis = "Analysis"
	// LabelAnalysisMC is added to analysis tasks run on simulated input.
	LabelAnalysisMC = LabelAnalysis + "MC"
	// LabelPostProcessing marks post-processing tasks.
	LabelPostProcessing = LabelAnalysis + "PostProcessing"
	// LabelUpload marks QC upload tasks.
	LabelUpload = LabelAnalysis + "Upload"
)

// Task is one stage of the workflow as consumed by the task runner
type Task struct {
	Name   string   `json:"name"`
	Cwd    string   `json:"cwd"`
	Labels []string `json:"labels"`
	CPU    int      `json:"cpu"`
	Mem    string   `json:"mem"`
	Needs  []string `json:"needs"`
	Cmd    string   `json:"cmd"`
}

// HasLabel reports whether the task carries label
func (t Task) HasLabel(label string) bool {
	for _, l := range t.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func (t Task) clone() Task {
	out := t
	out.Labels = append([]string{}, t.Labels...)
	out.Needs = append([]string{}, t.Needs...)
	return out
}

// FullAnalysisName is the task name of the analysis called raw
func FullAnalysisName(raw string) string {
	return LabelAnalysis + "_" + raw
}
