package types

// ConvertConfig carries the launcher settings that drive discovery and
// conversion. Defaults match what the recording workstation batch scripts
// have always passed.
type ConvertConfig struct {
	InputFile          string
	InputDirectory     string
	InputSuffix        string
	ConvertedDirectory string
	FFmpegExe          string
	Concurrency        int
	SkipConvert        bool
}

// Result records the outcome for a single file in a run. Output is empty
// when the stage failed before producing one.
type Result struct {
	Input  string
	Output string
	Err    error
}

// Failed filters results down to the ones that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Outputs collects the output paths of successful results.
func Outputs(results []Result) []string {
	var outs []string
	for _, r := range results {
		if r.Err == nil && r.Output != "" {
			outs = append(outs, r.Output)
		}
	}
	return outs
}
