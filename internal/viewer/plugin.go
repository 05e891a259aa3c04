package viewer

import "log/slog"

// Plugin extends a viewer. Plugins are created outside the viewer and are
// not destroyed by it.
type Plugin interface {
	ID() string
}

// Installer is implemented by plugins that hook into the viewer when added
type Installer interface {
	Install(v *Viewer) error
}

// Uninstaller is implemented by plugins that clean up when removed
type Uninstaller interface {
	Uninstall(v *Viewer)
}

// AddPlugin installs p. A plugin whose id is taken is ignored with a
// warning.
func (v *Viewer) AddPlugin(p Plugin) error {
	if v.FindPlugin(p.ID()) != nil {
		slog.Warn("plugin already exists", "component", "viewer", "plugin", p.ID())
		return nil
	}
	if i, ok := p.(Installer); ok {
		if err := i.Install(v); err != nil {
			return err
		}
	}
	v.plugins = append(v.plugins, p)
	slog.Debug("added plugin", "component", "viewer", "plugin", p.ID())
	return nil
}

// RemovePlugin uninstalls p
func (v *Viewer) RemovePlugin(p Plugin) {
	for i, q := range v.plugins {
		if q == p {
			v.plugins = append(v.plugins[:i], v.plugins[i+1:]...)
			if u, ok := p.(Uninstaller); ok {
				u.Uninstall(v)
			}
			return
		}
	}
}

// FindPlugin returns the plugin with the given id, or nil
func (v *Viewer) FindPlugin(id string) Plugin {
	for _, p := range v.plugins {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// Plugins returns the installed plugins in installation order
func (v *Viewer) Plugins() []Plugin { return v.plugins }

// ClearPlugins uninstalls every plugin
func (v *Viewer) ClearPlugins() {
	plugins := v.plugins
	v.plugins = nil
	for _, p := range plugins {
		if u, ok := p.(Uninstaller); ok {
			u.Uninstall(v)
		}
	}
}
