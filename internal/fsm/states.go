package fsm

// Draft composition steps, in the order the bot walks through them.
const (
	StepTitle    = "title"
	StepBody     = "body"
	StepDesc     = "desc"
	StepImage    = "image"
	StepCategory = "category"
	StepTags     = "tags"
)

// StepOrder is the fixed walk order of the composition flow.
var StepOrder = []string{StepTitle, StepBody, StepDesc, StepImage, StepCategory, StepTags}

var stepNames = map[string]string{
	StepTitle:    "1/6 Title",
	StepBody:     "2/6 Body",
	StepDesc:     "3/6 Description",
	StepImage:    "4/6 Cover image",
	StepCategory: "5/6 Category",
	StepTags:     "6/6 Tags",
}

// StepName returns the progress label shown to the user for a step.
func StepName(step string) string {
	if name, ok := stepNames[step]; ok {
		return name
	}
	return step
}

// PrevStep returns the step one position back in the flow. The first
// step is its own predecessor.
func PrevStep(step string) string {
	for i, s := range StepOrder {
		if s == step {
			if i == 0 {
				return s
			}
			return StepOrder[i-1]
		}
	}
	return StepTitle
}

// IsValidStep reports whether step names one of the composition steps.
func IsValidStep(step string) bool {
	_, ok := stepNames[step]
	return ok
}
