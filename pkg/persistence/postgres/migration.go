package postgres

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create sessions table
			CREATE TABLE sessions (
				id UUID PRIMARY KEY,
				current_step VARCHAR(50) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'completed', 'failed', 'expired')),
				payload JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				expires_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_sessions_status ON sessions(status);
			CREATE INDEX idx_sessions_expires_at ON sessions(expires_at);

			-- Create session_events table
			CREATE TABLE session_events (
				id UUID PRIMARY KEY,
				session_id UUID NOT NULL,
				payload JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_session_events_session_id ON session_events(session_id);
			CREATE INDEX idx_session_events_created_at ON session_events(created_at);
		`,
	}
}
