package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "secretvault.v1.VaultService"

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// vaultServer lists the RPCs served under serviceName.
type vaultServer interface {
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	Me(context.Context, *Empty) (*MeResponse, error)
	CreateEntry(context.Context, *CreateEntryRequest) (*Entry, error)
	ListEntries(context.Context, *Empty) (*ListEntriesResponse, error)
	UpdateEntry(context.Context, *UpdateEntryRequest) (*Entry, error)
	DeleteEntry(context.Context, *DeleteEntryRequest) (*Empty, error)
	RevealEntry(context.Context, *RevealEntryRequest) (*RevealEntryResponse, error)
	SecurityProfileStatus(context.Context, *Empty) (*SecurityProfileStatusResponse, error)
	SetupSecurityProfile(context.Context, *SecurityProfileAnswersRequest) (*Empty, error)
	VerifySecurityProfile(context.Context, *SecurityProfileAnswersRequest) (*Empty, error)
}

var _ vaultServer = (*GRPCServer)(nil)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*vaultServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", (*GRPCServer).Login),
		unary("Refresh", (*GRPCServer).Refresh),
		unary("Logout", (*GRPCServer).Logout),
		unary("Me", (*GRPCServer).Me),
		unary("CreateEntry", (*GRPCServer).CreateEntry),
		unary("ListEntries", (*GRPCServer).ListEntries),
		unary("UpdateEntry", (*GRPCServer).UpdateEntry),
		unary("DeleteEntry", (*GRPCServer).DeleteEntry),
		unary("RevealEntry", (*GRPCServer).RevealEntry),
		unary("SecurityProfileStatus", (*GRPCServer).SecurityProfileStatus),
		unary("SetupSecurityProfile", (*GRPCServer).SetupSecurityProfile),
		unary("VerifySecurityProfile", (*GRPCServer).VerifySecurityProfile),
	},
	Streams: []grpc.StreamDesc{},
}

// unary builds the method descriptor the protoc plugin would otherwise
// generate for a single RPC.
func unary[Req, Resp any](method string, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
