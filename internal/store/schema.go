package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableDocuments = "progress_documents"

	columnID                 = "id"
	columnUserID             = "user_id"
	columnDocID              = "doc_id"
	columnCompleted          = "completed"
	columnFailed             = "failed"
	columnCurrent            = "current"
	columnCurrentAssignedDay = "current_assigned_day"
	columnExamRecords        = "exam_records"
	columnUpdatedAt          = "updated_at"
)

var (
	// DocumentsColumns holds the columns for the "progress_documents" table.
	// Each top-level document field is its own JSON column so partial
	// updates never rewrite untouched fields.
	DocumentsColumns = []*schema.Column{
		{Name: columnID, Type: field.TypeInt, Increment: true},
		{Name: columnUserID, Type: field.TypeString},
		{Name: columnDocID, Type: field.TypeString},
		{Name: columnCompleted, Type: field.TypeJSON, Nullable: true},
		{Name: columnFailed, Type: field.TypeJSON, Nullable: true},
		{Name: columnCurrent, Type: field.TypeJSON, Nullable: true},
		{Name: columnCurrentAssignedDay, Type: field.TypeString, Nullable: true},
		{Name: columnExamRecords, Type: field.TypeJSON, Nullable: true},
		{Name: columnUpdatedAt, Type: field.TypeTime},
	}
	// DocumentsTable holds the schema information for the "progress_documents" table.
	DocumentsTable = &schema.Table{
		Name:       tableDocuments,
		Columns:    DocumentsColumns,
		PrimaryKey: []*schema.Column{DocumentsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "progressdocument_user_id_doc_id",
				Unique:  true,
				Columns: []*schema.Column{DocumentsColumns[1], DocumentsColumns[2]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{DocumentsTable}
)
