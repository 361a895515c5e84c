package charm

import (
	"context"

	"go.uber.org/zap" // Logging.

	"github.com/mintel/elasticsearch-charm/internal/pkg/playbook" // Ansible playbook runs.
)

// HostVars returns the variables the playbook is run with: the charm
// config, facts about the unit, and the settings of the remote unit
// in relation hooks.
func (c *Charm) HostVars(ctx context.Context) (map[string]interface{}, error) {
	vars, err := c.Tools.Config(ctx)
	if err != nil {
		return nil, err
	}
	if vars == nil {
		vars = make(map[string]interface{})
	}

	vars["charm_dir"] = c.Paths.CharmDir
	vars["local_unit"] = c.Env.UnitName
	if addr, err := c.Tools.PrivateAddress(ctx); err == nil {
		vars["unit_private_address"] = addr
	} else {
		c.Logger.Warn("error getting private address", zap.Error(err))
	}
	if addr, err := c.Tools.PublicAddress(ctx); err == nil {
		vars["unit_public_address"] = addr
	} else {
		c.Logger.Warn("error getting public address", zap.Error(err))
	}

	if c.Env.InRelation() {
		settings, err := c.Tools.RelationGetAll(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range playbook.RelationVars(c.Env.RelationName, settings) {
			vars[k] = v
		}
	}
	return vars, nil
}
