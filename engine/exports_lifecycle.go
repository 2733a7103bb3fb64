package engine

func (e *Engine) lifecycleExports() map[string]native {
	return map[string]native{
		"version": func(*args) (any, error) { return Version, nil },
		// Fast mode loads documents lazily.
		"setFast": func(*args) (any, error) {
			e.fast = true
			return nil, nil
		},
		"setSlow": func(*args) (any, error) {
			e.fast = false
			return nil, nil
		},
		"setDemo": func(a *args) (any, error) {
			on := a.bool(0)
			if a.err != nil {
				return nil, a.err
			}
			e.demo = on
			return nil, nil
		},
		"onExit": func(*args) (any, error) {
			e.reset()
			return nil, nil
		},
	}
}
