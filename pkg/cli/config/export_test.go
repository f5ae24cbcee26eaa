package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, moderatorChannel, followUpChannel string) *Slack {
	return &Slack{
		botToken:         botToken,
		moderatorChannel: moderatorChannel,
		followUpChannel:  followUpChannel,
	}
}

// NewTaxonomyForTest creates a Taxonomy config for testing purposes
func NewTaxonomyForTest(path string) *Taxonomy {
	return &Taxonomy{path: path}
}
