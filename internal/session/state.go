package session

// State is the position of the refresh pipeline.
type State int

const (
	// StateIdle accepts new refresh requests.
	StateIdle State = iota
	// StateBuildingTree waits for the tree job.
	StateBuildingTree
	// StateCollectingFiles waits for a folder collection job.
	StateCollectingFiles
	// StateAssemblingPrompt waits for the prompt job.
	StateAssemblingPrompt
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateBuildingTree:     "building tree",
	StateCollectingFiles:  "collecting files",
	StateAssemblingPrompt: "assembling prompt",
}

func (state State) String() string {
	if name, found := stateNames[state]; found {
		return name
	}
	return "unknown"
}
