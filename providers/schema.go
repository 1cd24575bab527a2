package providers

import (
	"github.com/hostquery/hostquery/config"
	"github.com/hostquery/hostquery/hashcache"
	"github.com/hostquery/hostquery/tables"
)

// Declared schemas for the standard tables. Column order here is the
// column order the SQL engine sees.
var (
	processColumns = []tables.Column{
		{Name: "pid", Type: tables.INTEGER},
		{Name: "name", Type: tables.TEXT},
		{Name: "path", Type: tables.TEXT},
		{Name: "cmdline", Type: tables.TEXT},
		{Name: "parent", Type: tables.BIGINT},
		{Name: "cwd", Type: tables.TEXT},
		{Name: "uid", Type: tables.BIGINT},
		{Name: "gid", Type: tables.BIGINT},
		{Name: "resident_size", Type: tables.BIGINT},
		{Name: "total_size", Type: tables.BIGINT},
		{Name: "user_time", Type: tables.BIGINT},
		{Name: "system_time", Type: tables.BIGINT},
		{Name: "start_time", Type: tables.BIGINT},
	}

	userColumns = []tables.Column{
		{Name: "uid", Type: tables.BIGINT},
		{Name: "gid", Type: tables.BIGINT},
		{Name: "uuid", Type: tables.TEXT},
		{Name: "username", Type: tables.TEXT},
		{Name: "description", Type: tables.TEXT},
		{Name: "directory", Type: tables.TEXT},
		{Name: "shell", Type: tables.TEXT},
	}

	groupColumns = []tables.Column{
		{Name: "gid", Type: tables.BIGINT},
		{Name: "groupname", Type: tables.TEXT},
	}

	osVersionColumns = []tables.Column{
		{Name: "name", Type: tables.TEXT},
		{Name: "version", Type: tables.TEXT},
		{Name: "major", Type: tables.TEXT},
		{Name: "minor", Type: tables.TEXT},
		{Name: "patch", Type: tables.TEXT},
		{Name: "build", Type: tables.TEXT},
		{Name: "platform", Type: tables.TEXT},
		{Name: "arch", Type: tables.TEXT},
	}

	systemInfoColumns = []tables.Column{
		{Name: "hostname", Type: tables.TEXT},
		{Name: "uuid", Type: tables.TEXT},
		{Name: "cpu_brand", Type: tables.TEXT},
		{Name: "cpu_logical_cores", Type: tables.INTEGER},
		{Name: "physical_memory", Type: tables.BIGINT},
	}

	agentInfoColumns = []tables.Column{
		{Name: "pid", Type: tables.INTEGER},
		{Name: "name", Type: tables.TEXT},
		{Name: "path", Type: tables.TEXT},
		{Name: "version", Type: tables.TEXT},
	}

	fileColumns = []tables.Column{
		{Name: "path", Type: tables.TEXT},
		{Name: "directory", Type: tables.TEXT},
		{Name: "filename", Type: tables.TEXT},
		{Name: "inode", Type: tables.BIGINT},
		{Name: "device", Type: tables.BIGINT},
		{Name: "uid", Type: tables.BIGINT},
		{Name: "gid", Type: tables.BIGINT},
		{Name: "mode", Type: tables.TEXT},
		{Name: "size", Type: tables.BIGINT},
		{Name: "mtime", Type: tables.BIGINT},
		{Name: "type", Type: tables.TEXT},
		{Name: "symlink", Type: tables.INTEGER},
	}

	hashColumns = []tables.Column{
		{Name: "path", Type: tables.TEXT},
		{Name: "directory", Type: tables.TEXT},
		{Name: "md5", Type: tables.TEXT},
		{Name: "sha1", Type: tables.TEXT},
		{Name: "sha256", Type: tables.TEXT},
	}
)

// RegisterStandardTables binds every standard provider into the
// registry. Binding errors are fatal configuration errors and surface
// here, before any query runs.
func RegisterStandardTables(registry *tables.Registry,
	cache *hashcache.Cache) error {

	specs := []struct {
		name      string
		columns   []tables.Column
		generator tables.Generator
	}{
		{"processes", processColumns, ProcessProvider{}},
		{"users", userColumns, UserProvider{}},
		{"groups", groupColumns, GroupProvider{}},
		{"os_version", osVersionColumns, OSVersionProvider{}},
		{"system_info", systemInfoColumns, SystemInfoProvider{}},
		{"agent_info", agentInfoColumns, AgentInfoProvider{Version: Version}},
		{"file", fileColumns, FileProvider{}},
		{"hash", hashColumns, NewHashProvider(cache)},
	}

	for _, spec := range specs {
		table, err := tables.NewTable(spec.name, spec.columns, spec.generator)
		if err != nil {
			return err
		}
		err = registry.Register(table)
		if err != nil {
			return err
		}
	}
	return nil
}

// NewStandardRegistry wires the default table set against a fresh
// digest cache configured from config_obj. The caller owns closing the
// returned cache.
func NewStandardRegistry(config_obj *config.Config) (
	*tables.Registry, *hashcache.Cache, error) {

	cache := hashcache.NewCache(config_obj)
	registry := tables.NewRegistry()

	err := RegisterStandardTables(registry, cache)
	if err != nil {
		cache.Close()
		return nil, nil, err
	}
	return registry, cache, nil
}
