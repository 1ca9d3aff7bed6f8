package filegroup

// Schema:
//
//	CREATE TABLE file_groups (
//	  id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
//	  original_names text[] NOT NULL,
//	  storage_paths  text[] NOT NULL,
//	  expires_at     timestamptz NOT NULL,
//	  created_at     timestamptz NOT NULL DEFAULT now()
//	);
//	CREATE INDEX idx_file_groups_expires_at ON file_groups (expires_at);
const (
	InsertFileGroup = `
		INSERT INTO file_groups (original_names, storage_paths, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, original_names, storage_paths, expires_at, created_at
	`
	SelectFileGroup = `
		SELECT id, original_names, storage_paths, expires_at, created_at
		FROM file_groups
		WHERE id = $1
	`
	SelectExpiredFileGroups = `
		SELECT id, original_names, storage_paths, expires_at, created_at
		FROM file_groups
		WHERE expires_at < $1
	`
	DeleteFileGroupByID = `
		DELETE FROM file_groups
		WHERE id = $1
	`
)
