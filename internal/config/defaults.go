package config

// DefaultConfigYAML is the commented configuration written when no
// configuration file exists.
const DefaultConfigYAML = `
# The filename of the todo file, comment the following line if entries should be printed instead.
filename:           'todo.txt'

# Set to true if subdirectories should be scanned
recursive:          true

# Todo keywords are listed here, each mapped to a priority (use an empty string for no priority).
# Keywords are matched case-insensitively when followed by a colon and whitespace.
todo_notations:
                    FIXME:  'A'
                    TODO:   ''

# If true, the contents of the todo file are printed once the scan is done.
print_result:       true

# If true the todo file is overwritten on every run.
# If false, tasks already present in the todo file are kept and only new ones are appended.
force_overwrite:    true

# Tags each line with the name of the scanned directory, compliant with the todo.txt format.
tag_with_project:   true

# Rewrite rule for the location of a task: [pattern, replacement].
# \1 to \9 refer to groups of the pattern. Macros: $line
location_pattern:   ['^.*?/([^/]+/)?([^/]+)$', '...\1\2:$line']

# Tags added to every task. Macros: $filename, $directory, $fileextension
# Note: spaces are replaced by dashes (-)
tags:               ['code-$fileextension']

# Exclusions, all regular expressions.
# 'files' matches file names only, 'dirs' matches directory names and 'paths' matches full paths.
exclude:
    files:          ['^todoscan$']
    dirs:           ['.git$', '.svn$']
    paths:          []

# Inclusions. Only files matching these patterns are scanned.
# Empty lists include everything that is not excluded.
include:
    files:          ['.c(pp|c|xx|s)?$', '.d$', '.h$', '.m$', '.php.?$', '.x?html?$', '.xml$', '.js$', '.css$', '.md$', '.textile$', '.java$', '.pl$', '.bat$', '.lua$', '.py.?$', '.rb$', '.sh$', '.go$']
    dirs:           []
    paths:          []

# Logging verbosity: trace, debug, info, warn, error
log_level:          'info'

# SQLite database recording every run, leave empty to disable.
history_db:         ''
`
