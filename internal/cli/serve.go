package cli

type ServeCmd struct{}

func (s *ServeCmd) Run(c *Context) error {
	a, err := c.Build()
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(c.Ctx)
}
