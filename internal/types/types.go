package types

const (
	DeploymentStatusRunning    string = "running"
	DeploymentStatusSuccessful string = "successful"
	DeploymentStatusFailed     string = "failed"
)

const (
	InstanceHealthInService    string = "InService"
	InstanceHealthOutOfService string = "OutOfService"
)

// Stack is an OpsWorks stack together with everything fetched for it during a single run
type Stack struct {
	StackId string `yaml:"id"`
	Name    string `yaml:"name"`
	Region  string `yaml:"region"`

	// Raw stack custom JSON document.
	CustomJson string `yaml:"-"`

	Layers        []Layer        `yaml:"layers,omitempty"`
	Apps          []App          `yaml:"apps,omitempty"`
	Deployments   []Deployment   `yaml:"deployments,omitempty"`
	LoadBalancers []LoadBalancer `yaml:"load-balancers,omitempty"`
}

// Layer of a stack
type Layer struct {
	LayerId   string `yaml:"id"`
	StackId   string `yaml:"-"`
	Shortname string `yaml:"shortname"`
	Name      string `yaml:"name"`

	// Raw layer custom JSON document.
	CustomJson string `yaml:"-"`

	// Effective configuration: the stack document overlaid by the layer document.
	// Set once when the layer is attached to its stack and never modified afterwards.
	Config map[string]interface{} `yaml:"config,omitempty"`

	Instances     []Instance     `yaml:"instances,omitempty"`
	LoadBalancers []LoadBalancer `yaml:"load-balancers,omitempty"`
}

// App deployable on a stack
type App struct {
	AppId     string `yaml:"id"`
	StackId   string `yaml:"-"`
	Shortname string `yaml:"shortname"`
	Name      string `yaml:"name"`

	// App source descriptor without secret fields.
	Source map[string]string `yaml:"source,omitempty"`
}

// Instance of a layer
type Instance struct {
	InstanceId       string `yaml:"id"`
	Ec2InstanceId    string `yaml:"ec2-id,omitempty"`
	Hostname         string `yaml:"hostname"`
	Status           string `yaml:"status"`
	InstanceType     string `yaml:"type,omitempty"`
	PublicIp         string `yaml:"public-ip,omitempty"`
	PrivateIp        string `yaml:"private-ip,omitempty"`
	AvailabilityZone string `yaml:"availability-zone,omitempty"`

	// Owning layer, the first layer the instance is registered in.
	LayerId string `yaml:"-"`

	// EC2 instance state name, only set when EC2 state was requested.
	Ec2State string `yaml:"ec2-state,omitempty"`

	// Load balancer health, only set for load balancer members.
	Health *InstanceHealth `yaml:"health,omitempty"`
}

// InstanceHealth as reported by a classic load balancer
type InstanceHealth struct {
	State       string `yaml:"state"`
	ReasonCode  string `yaml:"reason-code,omitempty"`
	Description string `yaml:"description,omitempty"`
}

func (h InstanceHealth) InService() bool {
	return h.State == InstanceHealthInService
}

// LoadBalancer attached to a layer
type LoadBalancer struct {
	Name           string   `yaml:"name"`
	Region         string   `yaml:"region"`
	DnsName        string   `yaml:"dns-name,omitempty"`
	LayerId        string   `yaml:"-"`
	Ec2InstanceIds []string `yaml:"-"`

	// Health state keyed by EC2 instance ID.
	Health map[string]InstanceHealth `yaml:"-"`

	// Layer instances registered with the load balancer.
	Instances []Instance `yaml:"instances,omitempty"`
}

// Deployment is a remote OpsWorks operation
type Deployment struct {
	DeploymentId string            `yaml:"id"`
	StackId      string            `yaml:"-"`
	AppId        string            `yaml:"app-id,omitempty"`
	Command      DeploymentCommand `yaml:"command"`
	Status       string            `yaml:"status"`
	CreatedAt    string            `yaml:"created-at"`
	CompletedAt  string            `yaml:"completed-at,omitempty"`
	Duration     int32             `yaml:"duration,omitempty"`
	IamUserArn   string            `yaml:"iam-user-arn,omitempty"`
	Comment      string            `yaml:"comment,omitempty"`
	CustomJson   string            `yaml:"custom-json,omitempty"`
}

// DeploymentCommand describes what a deployment runs
type DeploymentCommand struct {
	Name string              `yaml:"name"`
	Args map[string][]string `yaml:"args,omitempty"`
}

// Command to dispatch across stacks
type Command struct {
	// OpsWorks deployment command name. Required
	Name string `validate:"required,oneof=install_dependencies update_dependencies update_custom_cookbooks execute_recipes configure setup deploy rollback start stop restart undeploy"`

	// App shortname. Required for deploy
	App string `validate:"required_if=Name deploy"`

	// Recipes to execute. Required for execute_recipes
	Recipes []string `validate:"required_if=Name execute_recipes,dive,required"`

	// Deployment comment.
	Comment string `validate:"omitempty,max=1024"`
}
