package intrinsics

// Pseudo-parameters are predefined by CloudFormation and available in every template.
const (
	// AccountID is the AWS account ID of the account in which the stack is created.
	AccountID = "AWS::AccountId"

	// Partition is the partition the resource is in (aws, aws-cn, aws-us-gov).
	Partition = "AWS::Partition"

	// Region is the AWS Region in which the stack is created.
	Region = "AWS::Region"

	// StackName is the name of the stack.
	StackName = "AWS::StackName"
)

// Var formats a name as a Fn::Sub variable: Var(Region) → "${AWS::Region}".
func Var(name string) string {
	return "${" + name + "}"
}
