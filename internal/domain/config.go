package domain

// Config is the runtime view of the app-level settings, passed to every
// component at construction time. There are no ambient singletons.
type Config struct {
	AppID            string `yaml:"appId"`
	PrivilegedPrefix string `yaml:"privilegedPrefix"`
	SessionSecret    string `yaml:"sessionSecret"`
}
