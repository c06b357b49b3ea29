package reload

// Step is one unit of work within a reload.
type Step uint8

// Steps in load order.
const (
	StepShaders Step = iota + 1
	StepRootSignatures
	StepDescriptorSets
	StepSwapChain
	StepDepthBuffer
	StepPipelines
	StepPrepareDescriptorSets
	StepUserInterface
)

var stepNames = [...]string{
	StepShaders:               "Shaders",
	StepRootSignatures:        "RootSignatures",
	StepDescriptorSets:        "DescriptorSets",
	StepSwapChain:             "SwapChain",
	StepDepthBuffer:           "DepthBuffer",
	StepPipelines:             "Pipelines",
	StepPrepareDescriptorSets: "PrepareDescriptorSets",
	StepUserInterface:         "UserInterface",
}

// String returns the step name.
func (s Step) String() string {
	if int(s) < len(stepNames) && stepNames[s] != "" {
		return stepNames[s]
	}
	return "Unknown"
}

// LoadSteps returns the steps a load of type t performs, in order.
//
// Shader objects come first, then the swapchain and the depth buffer sized
// from it, then pipelines that reference both. Descriptor sets are always
// repopulated and the user interface is always given a chance to lay out.
func LoadSteps(t Type) []Step {
	steps := make([]Step, 0, 8)
	if t.Has(Shader) {
		steps = append(steps, StepShaders, StepRootSignatures, StepDescriptorSets)
	}
	if t.Has(Resize | RenderTarget) {
		steps = append(steps, StepSwapChain, StepDepthBuffer)
	}
	if t.Has(Shader | RenderTarget) {
		steps = append(steps, StepPipelines)
	}
	return append(steps, StepPrepareDescriptorSets, StepUserInterface)
}

// UnloadSteps returns the steps an unload of type t performs, in order.
// It is the exact reverse of LoadSteps without the repopulation step,
// which has nothing to tear down.
func UnloadSteps(t Type) []Step {
	load := LoadSteps(t)
	steps := make([]Step, 0, len(load))
	for i := len(load) - 1; i >= 0; i-- {
		if load[i] != StepPrepareDescriptorSets {
			steps = append(steps, load[i])
		}
	}
	return steps
}
