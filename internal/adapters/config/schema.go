package config

// File is the on-disk shape of hangar.yaml.
type File struct {
	InstallRoot             string       `yaml:"install_root"`
	AllowUncheckedDownloads bool         `yaml:"allow_unchecked_downloads"`
	Executable              string       `yaml:"executable"`
	ServerList              ServerList   `yaml:"server_list"`
	Servers                 []ServerSeed `yaml:"servers"`
	LogFile                 string       `yaml:"log_file"`
}

// ServerList configures the remote server list poller.
type ServerList struct {
	URL      string `yaml:"url"`
	Interval string `yaml:"interval"`
	TTL      string `yaml:"ttl"`
}

// ServerSeed is a statically configured server.
type ServerSeed struct {
	Address  string `yaml:"address"`
	Fork     string `yaml:"fork"`
	Build    string `yaml:"build"`
	Download string `yaml:"download"`
}
