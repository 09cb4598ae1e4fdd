package main

type config struct {
	BaseURL     string   `mapstructure:"base_url"`
	Secret      string   `mapstructure:"secret"`
	UserID      string   `mapstructure:"user_id"`
	DataTypes   []string `mapstructure:"data_types"`
	Interval    string   `mapstructure:"interval"`
	CloudEvents bool     `mapstructure:"cloudevents"`
}
